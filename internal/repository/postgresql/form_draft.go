package postgresql

import (
	"context"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/pkg/database"
	"github.com/yuadm/first-step-greet/internal/pkg/wizard"
)

type formDraftRepositoryImpl struct {
	db *database.DB
}

// NewFormDraftRepository returns a wizard.DraftStore backed by form_drafts.
func NewFormDraftRepository(db *database.DB) wizard.DraftStore {
	return &formDraftRepositoryImpl{db: db}
}

// Save implements wizard.DraftStore.
func (r *formDraftRepositoryImpl) Save(ctx context.Context, draft wizard.Draft) error {
	q := GetQuerier(ctx, r.db)

	data := []byte(draft.Data)
	if len(data) == 0 {
		data = []byte("{}")
	}

	query := `
		INSERT INTO form_drafts (user_id, form_key, current_step, data, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		ON CONFLICT (user_id, form_key) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			data         = EXCLUDED.data,
			updated_at   = EXCLUDED.updated_at
	`

	var updatedAt interface{}
	if !draft.UpdatedAt.IsZero() {
		updatedAt = draft.UpdatedAt
	}

	if _, err := q.Exec(ctx, query, draft.OwnerID, draft.FormKey, draft.CurrentStep, string(data), updatedAt); err != nil {
		return fmt.Errorf("failed to save form draft: %w", err)
	}
	return nil
}

// Load implements wizard.DraftStore.
func (r *formDraftRepositoryImpl) Load(ctx context.Context, ownerID, formKey string) (wizard.Draft, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, form_key, current_step, data, updated_at
		FROM form_drafts
		WHERE user_id = $1 AND form_key = $2
	`

	var d wizard.Draft
	var data []byte
	err := q.QueryRow(ctx, query, ownerID, formKey).Scan(&d.OwnerID, &d.FormKey, &d.CurrentStep, &data, &d.UpdatedAt)
	if err != nil {
		if isNotFound(err) {
			return wizard.Draft{}, wizard.ErrDraftNotFound
		}
		return wizard.Draft{}, fmt.Errorf("failed to load form draft: %w", err)
	}
	d.Data = data
	return d, nil
}

// Clear implements wizard.DraftStore. Clearing a missing draft is not an error.
func (r *formDraftRepositoryImpl) Clear(ctx context.Context, ownerID, formKey string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM form_drafts WHERE user_id = $1 AND form_key = $2`, ownerID, formKey); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to clear form draft: %w", err)
	}
	return nil
}

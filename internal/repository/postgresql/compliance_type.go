package postgresql

import (
	"context"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/compliance"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
)

type complianceTypeRepositoryImpl struct {
	db *database.DB
}

func NewComplianceTypeRepository(db *database.DB) compliance.TypeRepository {
	return &complianceTypeRepositoryImpl{db: db}
}

const complianceTypeColumns = `id, name, description, frequency, target_table, is_active, created_at, updated_at`

func scanComplianceType(row interface{ Scan(...any) error }) (compliance.Type, error) {
	var t compliance.Type
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Frequency,
		&t.TargetTable,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

// Create implements compliance.TypeRepository.
func (r *complianceTypeRepositoryImpl) Create(ctx context.Context, t compliance.Type) (compliance.Type, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO compliance_types (name, description, frequency, target_table, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING ` + complianceTypeColumns

	created, err := scanComplianceType(q.QueryRow(ctx, query, t.Name, t.Description, t.Frequency, t.TargetTable, t.IsActive))
	if err != nil {
		return compliance.Type{}, fmt.Errorf("failed to create compliance type: %w", err)
	}
	return created, nil
}

// GetByID implements compliance.TypeRepository.
func (r *complianceTypeRepositoryImpl) GetByID(ctx context.Context, id string) (compliance.Type, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + complianceTypeColumns + ` FROM compliance_types WHERE id = $1`

	t, err := scanComplianceType(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return compliance.Type{}, compliance.ErrTypeNotFound
		}
		return compliance.Type{}, fmt.Errorf("failed to get compliance type: %w", err)
	}
	return t, nil
}

// List implements compliance.TypeRepository.
func (r *complianceTypeRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]compliance.Type, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + complianceTypeColumns + ` FROM compliance_types`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance types: %w", err)
	}
	defer rows.Close()

	var types []compliance.Type
	for rows.Next() {
		t, err := scanComplianceType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance type: %w", err)
		}
		types = append(types, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return types, nil
}

// Update implements compliance.TypeRepository. Frequency and target are fixed
// once records exist, so only name, description and the active flag change.
func (r *complianceTypeRepositoryImpl) Update(ctx context.Context, t compliance.Type) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE compliance_types
		SET name = $1, description = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
	`

	commandTag, err := q.Exec(ctx, query, t.Name, t.Description, t.IsActive, t.ID)
	if err != nil {
		if isNotFound(err) {
			return compliance.ErrTypeNotFound
		}
		return fmt.Errorf("failed to update compliance type: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return compliance.ErrTypeNotFound
	}

	return nil
}

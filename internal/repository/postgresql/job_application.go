package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/assessment"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
)

type jobApplicationRepositoryImpl struct {
	db *database.DB
}

func NewJobApplicationRepository(db *database.DB) assessment.ApplicationRepository {
	return &jobApplicationRepositoryImpl{db: db}
}

// Create stores a submitted application. The full form is kept in data.
func (r *jobApplicationRepositoryImpl) Create(ctx context.Context, a assessment.Application) (assessment.Application, error) {
	q := GetQuerier(ctx, r.db)

	data, err := json.Marshal(a.Data)
	if err != nil {
		return assessment.Application{}, fmt.Errorf("failed to encode job application: %w", err)
	}

	query := `
		INSERT INTO job_applications (submitted_by, full_name, email, position, branch_id, status, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = q.QueryRow(ctx, query,
		a.SubmittedBy, a.FullName, a.Email, a.Position, a.BranchID, a.Status, string(data),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return assessment.Application{}, fmt.Errorf("failed to create job application: %w", err)
	}
	return a, nil
}

package postgresql

import (
	"context"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/master/branch"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
)

type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepositoryImpl{db: db}
}

// GetByID implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, name, address, timezone FROM branches WHERE id = $1`

	var b branch.Branch
	err := q.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Address, &b.Timezone)
	if err != nil {
		if isNotFound(err) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}
	return b, nil
}

// List implements branch.BranchRepository.
func (r *branchRepositoryImpl) List(ctx context.Context) ([]branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id, name, address, timezone FROM branches ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branches []branch.Branch
	for rows.Next() {
		var b branch.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Timezone); err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return branches, nil
}

package postgresql

import (
	"context"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/client"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
)

type clientRepositoryImpl struct {
	db *database.DB
}

func NewClientRepository(db *database.DB) client.ClientRepository {
	return &clientRepositoryImpl{db: db}
}

const clientColumns = `id, branch_id, full_name, address, phone_number, status, start_date, end_date, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (client.Client, error) {
	var c client.Client
	err := row.Scan(
		&c.ID,
		&c.BranchID,
		&c.FullName,
		&c.Address,
		&c.PhoneNumber,
		&c.Status,
		&c.StartDate,
		&c.EndDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// GetByID implements client.ClientRepository.
func (r *clientRepositoryImpl) GetByID(ctx context.Context, id string) (client.Client, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanClient(q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return client.Client{}, client.ErrClientNotFound
		}
		return client.Client{}, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// List implements client.ClientRepository.
func (r *clientRepositoryImpl) List(ctx context.Context, filter client.Filter) ([]client.Client, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.BranchID != nil {
		query += fmt.Sprintf(" AND branch_id = $%d", argIdx)
		args = append(args, *filter.BranchID)
		argIdx++
	}

	if filter.ActiveOnly {
		query += fmt.Sprintf(" AND status <> $%d", argIdx)
		args = append(args, client.StatusInactive)
	}

	query += " ORDER BY full_name ASC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return clients, nil
}

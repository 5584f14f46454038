package postgresql

import (
	"context"
	"fmt"

	"github.com/yuadm/first-step-greet/internal/domain/user"
	"github.com/yuadm/first-step-greet/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, email, full_name, password_hash, role, branch_id, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.BranchID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// GetByEmail implements user.UserRepository. Matching is case-insensitive.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

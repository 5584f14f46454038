package user

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"   // Sees every branch, manages compliance types
	RoleManager Role = "manager" // Branch manager, records compliance for a branch
	RoleStaff   Role = "staff"   // Care worker, fills in assessment forms
)

type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash *string
	Role         Role
	BranchID     *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user has unrestricted branch access
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserInactive            = errors.New("user account is inactive")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrBranchAccessDenied      = errors.New("branch access denied")
)

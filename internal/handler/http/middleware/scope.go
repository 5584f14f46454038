package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/yuadm/first-step-greet/internal/domain/user"
)

// Principal is the caller as described by its access token claims.
type Principal struct {
	UserID   string
	Role     user.Role
	BranchID *string
}

// PrincipalFromRequest reads the verified claims of r.
func PrincipalFromRequest(r *http.Request) Principal {
	_, claims, _ := jwtauth.FromContext(r.Context())

	var p Principal
	if v, ok := claims["user_id"].(string); ok {
		p.UserID = v
	}
	if v, ok := claims["role"].(string); ok {
		p.Role = user.Role(v)
	}
	if v, ok := claims["branch_id"].(string); ok && v != "" {
		p.BranchID = &v
	}
	return p
}

// BranchScope resolves the branch a request may see. Admins get requested
// as-is (nil means every branch). Everyone else is pinned to their own
// branch and may not ask for another one.
func BranchScope(p Principal, requested *string) (*string, error) {
	if p.Role == user.RoleAdmin {
		return requested, nil
	}
	if p.BranchID == nil {
		return nil, user.ErrBranchAccessDenied
	}
	if requested != nil && *requested != *p.BranchID {
		return nil, user.ErrBranchAccessDenied
	}
	own := *p.BranchID
	return &own, nil
}

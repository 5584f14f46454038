package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Logout(ctx context.Context, accessToken string, expiresAt int64) error
	IssueSSEToken(ctx context.Context, userID string) (SSETokenResponse, error)
}

package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuadm/first-step-greet/internal/domain/user"
)

func TestGenerateAccessToken_Claims(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	branch := "branch-1"

	token, expiresAt, err := svc.GenerateAccessToken(user.User{ID: "u1", Email: "a@b.co", Role: user.RoleManager, BranchID: &branch})
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", claims["user_id"])
	assert.Equal(t, "manager", claims["role"])
	assert.Equal(t, "branch-1", claims["branch_id"])
	assert.Equal(t, "access", claims["type"])
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	token, expiresIn, err := svc.GenerateSSEToken("u1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	access, _, err := svc.GenerateAccessToken(user.User{ID: "u1", Role: user.RoleStaff})
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	other := NewJWTService("other-secret", time.Hour)
	_, err = other.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	now := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.RevokeToken("old", now.Add(-time.Minute).Unix())
	svc.RevokeToken("current", now.Add(time.Hour).Unix())
	assert.True(t, svc.IsTokenRevoked("current"))

	svc.RevokeToken("another", now.Add(time.Hour).Unix())
	assert.False(t, svc.IsTokenRevoked("old"))
	assert.True(t, svc.IsTokenRevoked("current"))
	assert.False(t, svc.IsTokenRevoked("never"))
}

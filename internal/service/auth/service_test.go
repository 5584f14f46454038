package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuadm/first-step-greet/internal/domain/auth"
	"github.com/yuadm/first-step-greet/internal/domain/user"
	"github.com/yuadm/first-step-greet/internal/pkg/jwt"
	"github.com/yuadm/first-step-greet/internal/pkg/validator"
)

const testSecret = "test-secret-key-for-jwt"

type memoryUserRepo struct {
	users map[string]user.User
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func newAuthService(t *testing.T) (auth.AuthService, *jwt.JWTService) {
	t.Helper()

	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	branch := "branch-1"

	repo := &memoryUserRepo{users: map[string]user.User{
		"u1": {ID: "u1", Email: "manager@example.com", PasswordHash: &hash, Role: user.RoleManager, BranchID: &branch, IsActive: true},
		"u2": {ID: "u2", Email: "gone@example.com", PasswordHash: &hash, Role: user.RoleStaff, IsActive: false},
		"u3": {ID: "u3", Email: "sso@example.com", Role: user.RoleStaff, IsActive: true},
	}}
	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	return NewAuthService(repo, jwtService), jwtService
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{Email: "manager@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "manager", resp.Role)
	require.NotNil(t, resp.BranchID)
	assert.Equal(t, "branch-1", *resp.BranchID)
	assert.Greater(t, resp.AccessTokenExpiresIn, time.Now().Unix())
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  auth.LoginRequest
		want error
	}{
		{"wrong password", auth.LoginRequest{Email: "manager@example.com", Password: "nope"}, auth.ErrInvalidCredentials},
		{"unknown email", auth.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"}, auth.ErrInvalidCredentials},
		{"no password set", auth.LoginRequest{Email: "sso@example.com", Password: "correct-horse"}, auth.ErrInvalidCredentials},
		{"inactive account", auth.LoginRequest{Email: "gone@example.com", Password: "correct-horse"}, auth.ErrAccountInactive},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Login(ctx, c.req)
			assert.ErrorIs(t, err, c.want)
		})
	}

	_, err := svc.Login(ctx, auth.LoginRequest{Email: "not-an-email"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "email")
	assert.Contains(t, verrs.ToMap(), "password")
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, jwtService := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "manager@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken, resp.AccessTokenExpiresIn))
	assert.True(t, jwtService.IsTokenRevoked(resp.AccessToken))

	assert.ErrorIs(t, svc.Logout(ctx, "", 0), auth.ErrInvalidToken)
}

func TestIssueSSEToken(t *testing.T) {
	svc, jwtService := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.IssueSSEToken(ctx, "u1")
	require.NoError(t, err)
	userID, err := jwtService.ValidateSSEToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, err = svc.IssueSSEToken(ctx, "u2")
	assert.ErrorIs(t, err, auth.ErrAccountInactive)

	_, err = svc.IssueSSEToken(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuadm/first-step-greet/internal/domain/auth"
	"github.com/yuadm/first-step-greet/internal/domain/user"
	"github.com/yuadm/first-step-greet/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository: userRepository,
		Service:        jwtService,
	}
}

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	accessToken, expiresAt, err := a.Service.GenerateAccessToken(userData)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	slog.Info("User logged in", "user_id", userData.ID, "role", userData.Role)

	return auth.TokenResponse{
		AccessToken:          accessToken,
		AccessTokenExpiresIn: expiresAt,
		Role:                 string(userData.Role),
		BranchID:             userData.BranchID,
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, accessToken string, expiresAt int64) error {
	if accessToken == "" {
		return auth.ErrInvalidToken
	}
	a.Service.RevokeToken(accessToken, expiresAt)
	return nil
}

// IssueSSEToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueSSEToken(ctx context.Context, userID string) (auth.SSETokenResponse, error) {
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return auth.SSETokenResponse{}, err
	}
	if !userData.IsActive {
		return auth.SSETokenResponse{}, auth.ErrAccountInactive
	}

	token, expiresIn, err := a.Service.GenerateSSEToken(userData.ID)
	if err != nil {
		return auth.SSETokenResponse{}, fmt.Errorf("failed to generate sse token: %w", err)
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

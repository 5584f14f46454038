package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/yuadm/first-step-greet/internal/domain/auth"
	"github.com/yuadm/first-step-greet/internal/handler/http/response"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	SSEToken(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validate DTO
	if err := loginReq.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	// Call service
	tokenResponse, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Warn("Login service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("User logged in successfully", "role", tokenResponse.Role)
	response.Created(w, "User logged in successfully", tokenResponse)
}

// Logout implements AuthHandler. The presented access token is revoked
// until it would have expired anyway.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	if err := a.authService.Logout(r.Context(), jwtauth.TokenFromHeader(r), token.Expiration().Unix()); err != nil {
		slog.Error("Logout service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

// SSEToken issues a short-lived token for the event stream, which cannot
// carry an Authorization header.
func (a *AuthHandlerImpl) SSEToken(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == "" {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, err := a.authService.IssueSSEToken(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to generate SSE token", "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, token)
}

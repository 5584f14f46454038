package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/yuadm/first-step-greet/internal/domain/auth"
	"github.com/yuadm/first-step-greet/internal/handler/http/response"
	"github.com/yuadm/first-step-greet/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified, unrevoked access token.
// It must run after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if jwtService.IsTokenRevoked(jwtauth.TokenFromHeader(r)) {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

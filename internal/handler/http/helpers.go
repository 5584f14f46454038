package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/jwtauth/v5"
)

// getUserIDFromContext extracts user_id from JWT context
func getUserIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if userID, ok := claims["user_id"].(string); ok {
		return userID
	}
	return ""
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// getOptionalQueryParam returns nil for a missing or empty parameter.
func getOptionalQueryParam(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/faceforge/faceforge/internal/config"
)

// RequireToken verifies the shared API token before any store access.
// A missing token is rejected with 401, a wrong one with 403. The token
// is taken from the Authorization header (Bearer scheme), with the
// X-Auth-Token header accepted as a fallback for non-browser clients.
func RequireToken(cfg *config.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, `{"error": "missing authentication token"}`, http.StatusUnauthorized)
				return
			}
			if cfg.Token == "" || token != cfg.Token {
				http.Error(w, `{"error": "invalid authentication token"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the caller's token from the request headers.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/response"
)

// Auth returns a middleware that requires the configured API token. An empty
// token disables the check. Browsers cannot set headers on EventSource or
// WebSocket requests, so the token is also accepted as access_token.
func Auth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := extractToken(r)
			if got == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API token")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				response.WriteError(w, http.StatusUnauthorized, "invalid API token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if t, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

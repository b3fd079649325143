package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nerve-health/referral/backend/pkg/auth"
)

type claimsContextKey struct{}

// AuthMiddleware validates Bearer tokens and stores the claims in the
// request context. Routes wrapped with it reject anonymous requests.
func AuthMiddleware(tokens *auth.TokenManager) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}

			claims, err := tokens.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// ClaimsFromContext returns the validated claims stored by
// AuthMiddleware, or nil on unauthenticated requests.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*auth.Claims)
	return claims
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}

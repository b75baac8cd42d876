// Package middleware holds chi-compatible HTTP middleware for pkg/api.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/permflow/engine/pkg/api/auth"
	"github.com/permflow/engine/pkg/api/handlers"
)

type contextKey int

const claimsContextKey contextKey = iota

// JWTAuth requires a valid "Authorization: Bearer <token>" header, storing
// the validated claims in the request context for downstream handlers.
func JWTAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				handlers.Unauthorized(w, "missing bearer token")
				return
			}
			claims, err := svc.ValidateToken(strings.TrimPrefix(header, prefix))
			if err != nil {
				handlers.Unauthorized(w, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by JWTAuth, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

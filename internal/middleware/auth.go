// Package middleware provides the HTTP middleware chain for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pennywise-app/pennywise/internal/domain/auth/service"
	"github.com/pennywise-app/pennywise/internal/httpjson"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Auth validates the bearer token and stores the caller's user ID in the
// request context. Requests without a valid token get a 401.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpjson.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := authService.ValidateAccessToken(r.Context(), token)
			if err != nil {
				httpjson.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user ID set by Auth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// ContextWithUserID returns a context carrying the given user ID, as Auth
// would produce for an authenticated request.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

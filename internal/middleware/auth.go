package middleware

import (
	"context"
	"net/http"

	"optic-storefront/internal/domain"

	"go.uber.org/zap"
)

type contextKey string

// RequireAuth rejects requests whose session holds no credential
func RequireAuth(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := GetSession(r.Context())
			if !ok {
				logger.Error("Session not found in context")
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !s.User.IsAuthenticated() {
				logger.Debug("Unauthenticated request to protected endpoint",
					zap.String("session_id", s.ID),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID extracts the signed-in user's ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	s, ok := GetSession(ctx)
	if !ok {
		return "", false
	}
	user := s.User.User()
	if user == nil || !s.User.IsAuthenticated() {
		return "", false
	}
	return user.ID, true
}

// GetUserRole extracts the signed-in user's role from request context
func GetUserRole(ctx context.Context) (domain.Role, bool) {
	s, ok := GetSession(ctx)
	if !ok {
		return "", false
	}
	return s.User.Role()
}

package middleware

import (
	"net/http"

	"optic-storefront/internal/access"

	"go.uber.org/zap"
)

// Authorize guards a route with req. Anonymous sessions get 401 and
// signed-in users lacking the permissions get 403.
func Authorize(req access.Requirement, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := GetSession(r.Context())
			authenticated := ok && s.User.IsAuthenticated()
			role, _ := GetUserRole(r.Context())

			switch access.Guard(authenticated, role, req) {
			case access.Login:
				logger.Debug("Authentication required", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusUnauthorized, "authentication required")
				return
			case access.Denied:
				logger.Warn("User lacks permission for endpoint",
					zap.String("role", role.String()),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission requires every permission in perms
func RequirePermission(logger *zap.Logger, perms ...access.Permission) func(http.Handler) http.Handler {
	return Authorize(access.Require(perms...), logger)
}

// RequireAnyPermission requires at least one permission in perms
func RequireAnyPermission(logger *zap.Logger, perms ...access.Permission) func(http.Handler) http.Handler {
	return Authorize(access.RequireAny(perms...), logger)
}

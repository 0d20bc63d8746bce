package middleware

import (
	"context"
	"net/http"

	"optic-storefront/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// SessionCookie carries the storefront session id for browsers
	SessionCookie = "sf_session"
	// SessionHeader carries the session id for non-browser clients
	SessionHeader = "X-Session-ID"

	sessionKey contextKey = "session"
)

// SessionMiddleware resolves the visitor's session and stores it in the
// request context. Unknown or malformed ids start a new session.
func SessionMiddleware(manager *session.Manager, secureCookie bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if cookie, err := r.Cookie(SessionCookie); err == nil {
					id = cookie.Value
				}
			}

			if _, err := uuid.Parse(id); err != nil {
				if id != "" {
					logger.Debug("Discarding malformed session id", zap.Error(err))
				}
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionHeader, id)

			s := manager.Get(r.Context(), id)
			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the session from request context
func GetSession(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok && s != nil
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
	"optic-storefront/internal/service"
	"optic-storefront/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// newTestManager returns a session manager whose backend signs every login
// in with role
func newTestManager(t *testing.T, role domain.Role) *session.Manager {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"user":  map[string]any{"id": "user-" + string(role), "email": "test@example.com", "role": role},
				"token": "token-" + string(role),
			},
		})
	}))
	t.Cleanup(backend.Close)

	client := apiclient.NewWithHTTPClient(backend.URL, backend.Client(), zap.NewNop())
	return session.NewManager(client, nil, 1, zap.NewNop())
}

// withSession attaches a session to req, signed in when role is not empty
func withSession(t *testing.T, req *http.Request, role domain.Role) *http.Request {
	t.Helper()
	m := newTestManager(t, role)
	s := m.Get(context.Background(), uuid.NewString())
	if role != "" {
		if _, err := s.User.Login(context.Background(), service.LoginRequest{Email: "test@example.com", Password: "secret"}); err != nil {
			t.Fatalf("login failed: %v", err)
		}
	}
	return req.WithContext(context.WithValue(req.Context(), sessionKey, s))
}

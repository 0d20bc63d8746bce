package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"
	"optic-storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend is an in-process stand-in for the commerce API
type fakeBackend struct {
	mux *http.ServeMux

	mu       sync.Mutex
	requests []string
	auth     map[string]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{mux: http.NewServeMux(), auth: map[string]string{}}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)
	b.auth[r.Method+" "+r.URL.Path] = r.Header.Get("Authorization")
	b.mu.Unlock()
	b.mux.ServeHTTP(w, r)
}

func (b *fakeBackend) handle(pattern string, fn http.HandlerFunc) {
	b.mux.HandleFunc(pattern, fn)
}

func (b *fakeBackend) seen(call string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r == call {
			return true
		}
	}
	return false
}

func (b *fakeBackend) authorization(call string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth[call]
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": http.StatusText(status), "message": message})
}

// loginAs makes the backend sign every login in with role
func (b *fakeBackend) loginAs(role domain.Role) {
	b.handle("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{
			"user":  map[string]any{"id": "u-" + string(role), "email": "ana@example.com", "role": role},
			"token": "tok-" + string(role),
		})
	})
	b.handle("GET /cart", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"items": []any{}, "subtotal": "0", "totalItems": 0})
	})
}

type testApp struct {
	t        *testing.T
	backend  *fakeBackend
	router   http.Handler
	sessions *session.Manager
	id       string
}

func newTestApp(t *testing.T, backend *fakeBackend) *testApp {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client := apiclient.NewWithHTTPClient(srv.URL, srv.Client(), logger)
	sessions := session.NewManager(client, nil, 4, logger)

	router := chi.NewRouter()
	router.Use(middleware.SessionMiddleware(sessions, false, logger))
	NewProductHandler(logger).RegisterRoutes(router)
	NewAuthHandler(logger).RegisterRoutes(router)
	NewCartHandler(logger).RegisterRoutes(router)
	NewOrderHandler(logger).RegisterRoutes(router)
	NewAppointmentHandler(logger).RegisterRoutes(router)
	NewQuotationHandler(logger).RegisterRoutes(router)
	NewStaffHandler(5, logger).RegisterRoutes(router)
	NewAdminHandler(logger).RegisterRoutes(router)

	return &testApp{t: t, backend: backend, router: router, sessions: sessions, id: uuid.NewString()}
}

func (a *testApp) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, a.id)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login() {
	a.t.Helper()
	_, err := a.sessions.Get(context.Background(), a.id).User.Login(context.Background(),
		service.LoginRequest{Email: "ana@example.com", Password: "secret"})
	require.NoError(a.t, err)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

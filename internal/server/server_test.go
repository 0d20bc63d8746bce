package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/config"
	custommiddleware "optic-storefront/internal/middleware"
	"optic-storefront/internal/repository"
	"optic-storefront/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "production", AllowedOrigins: []string{"https://shop.example.com"}, SessionIdle: time.Hour},
		Backend:   config.BackendConfig{BaseURL: backendURL, Timeout: time.Second},
		Snapshot:  config.SnapshotConfig{Driver: repository.DriverMemory, Prefix: "sf"},
		RateLimit: config.RateLimitConfig{Requests: 2, Window: time.Minute},
		Inventory: config.InventoryConfig{BulkConcurrency: 2, LowStockThreshold: 5},
	}
}

func newTestRouter(t *testing.T, rdb *redis.Client) http.Handler {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"p1","name":"Aviator","brand":"Ray-Ban","isActive":true}]}`))
	}))
	t.Cleanup(backend.Close)

	cfg := testConfig(backend.URL)
	logger := zap.NewNop()
	deps := Dependencies{Redis: rdb, Snapshots: repository.NewMemorySnapshotRepository()}
	client := apiclient.NewWithHTTPClient(backend.URL, backend.Client(), logger)
	sessions := session.NewManager(client, deps.Snapshots, cfg.Inventory.BulkConcurrency, logger)
	return NewRouter(cfg, logger, deps, sessions)
}

func TestRouter_HealthSkipsSession(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(custommiddleware.SessionHeader))
}

func TestRouter_PublicCatalogStartsSession(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?q=ray", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := w.Header().Get(custommiddleware.SessionHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, custommiddleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].Secure)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["data"], 1)
}

func TestRouter_RateLimitWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	router := newTestRouter(t, rdb)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "203.0.113.9:5000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health is outside the limited group
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

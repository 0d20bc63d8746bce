package transport

import (
	"net/http"
	"testing"

	"optic-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderBackend(status string) *fakeBackend {
	backend := newFakeBackend()
	backend.loginAs(domain.RoleUser)
	backend.handle("GET /orders/o1", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"id": "o1", "orderNumber": "ORD-1", "status": status})
	})
	backend.handle("PUT /orders/o1/cancel", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]any{"id": "o1", "orderNumber": "ORD-1", "status": "cancelled"})
	})
	return backend
}

func TestCancelOrder(t *testing.T) {
	tests := []struct {
		name         string
		status       string
		expectedCode int
		cancelCalled bool
	}{
		{"pending order", "pending", http.StatusOK, true},
		{"confirmed order", "confirmed", http.StatusOK, true},
		{"shipped order", "shipped", http.StatusConflict, false},
		{"delivered order", "delivered", http.StatusConflict, false},
		{"cancelled order", "cancelled", http.StatusConflict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := orderBackend(tt.status)
			app := newTestApp(t, backend)
			app.login()

			w := app.do(http.MethodPost, "/api/orders/o1/cancel", nil)

			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			assert.Equal(t, tt.cancelCalled, backend.seen("PUT /orders/o1/cancel"))
		})
	}
}

func TestGetOrder_NotFoundPassesThrough(t *testing.T) {
	backend := newFakeBackend()
	backend.loginAs(domain.RoleUser)
	backend.handle("GET /orders/missing", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "Order not found")
	})
	app := newTestApp(t, backend)
	app.login()

	w := app.do(http.MethodGet, "/api/orders/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", decodeEnvelope(t, w)["message"])
}

func TestListOrders_ForwardsFilterAndBuildsControls(t *testing.T) {
	backend := newFakeBackend()
	backend.loginAs(domain.RoleUser)
	var query string
	backend.handle("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"o1","status":"pending","items":[{"quantity":2},{"quantity":1}]}],
			"meta":{"pagination":{"page":2,"limit":1,"total":3,"pages":3}}}`))
	})
	app := newTestApp(t, backend)
	app.login()

	w := app.do(http.MethodGet, "/api/orders?page=2&limit=1&status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Contains(t, query, "status=pending")
	assert.Contains(t, query, "page=2")

	data := decodeEnvelope(t, w)["data"].(map[string]any)
	rows := data["rows"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, float64(3), row["itemCount"])
	assert.Equal(t, true, row["canCancel"])

	controls := data["controls"].(map[string]any)
	assert.Equal(t, float64(2), controls["current"])
	assert.Equal(t, false, controls["prevDisabled"])
	assert.Equal(t, false, controls["nextDisabled"])
}

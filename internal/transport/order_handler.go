package transport

import (
	"net/http"

	"optic-storefront/internal/domain"
	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"
	"optic-storefront/internal/view"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler handles the customer's order history
type OrderHandler struct {
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(logger *zap.Logger) *OrderHandler {
	return &OrderHandler{logger: logger}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.logger))
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/cancel", h.CancelOrder)
	})
}

// ListOrders returns one page of orders as table rows
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	page, err := s.Services.Orders.List(r.Context(), orderFilter(r))
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, view.BuildOrdersPage(page), "")
}

// GetOrder returns a single order
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	order, err := s.Services.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, view.NewOrderRow(*order), "")
}

// CancelOrder cancels an order that has not been processed yet
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	order, err := s.Services.Orders.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}
	if !order.CanCancel() {
		middleware.RespondWithError(w, http.StatusConflict, "order can no longer be cancelled")
		return
	}

	cancelled, err := s.Services.Orders.Cancel(r.Context(), id)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("Order cancelled", zap.String("order_id", id), zap.String("session_id", s.ID))
	middleware.RespondSuccess(w, http.StatusOK, view.NewOrderRow(*cancelled), "Order cancelled")
}

func orderFilter(r *http.Request) service.OrderFilter {
	return service.OrderFilter{
		ListParams: listParams(r),
		Status:     domain.OrderStatus(r.URL.Query().Get("status")),
	}
}

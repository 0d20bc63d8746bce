package transport

import (
	"errors"
	"net/http"

	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"
	"optic-storefront/internal/session"
	"optic-storefront/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UpdateQuantityRequest changes a cart line. Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

// CheckoutRequest is the checkout form
type CheckoutRequest = service.CreateOrderRequest

// CartHandler handles the session cart and checkout
type CartHandler struct {
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(logger *zap.Logger) *CartHandler {
	return &CartHandler{logger: logger}
}

// RegisterRoutes registers cart and checkout routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.logger))

		r.Route("/api/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{id}", h.UpdateItem)
			r.Delete("/items/{id}", h.RemoveItem)
		})
		r.Post("/api/checkout", h.Checkout)
	})
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, s *session.Session) {
	middleware.RespondSuccess(w, status, s.Cart.Cart(), "")
}

// GetCart reloads the cart from the backend
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := s.Cart.Load(r.Context()); err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.respondCart(w, http.StatusOK, s)
}

// AddItem adds a product line
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req service.AddCartItemRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	if err := s.Cart.AddItem(r.Context(), req); err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.respondCart(w, http.StatusCreated, s)
}

// UpdateItem changes a line's quantity
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	if err := s.Cart.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), req.Quantity); err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.respondCart(w, http.StatusOK, s)
}

// RemoveItem removes a line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := s.Cart.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.respondCart(w, http.StatusOK, s)
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := s.Cart.Clear(r.Context()); err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.respondCart(w, http.StatusOK, s)
}

// Checkout places an order for the current cart
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	order, err := s.Cart.Checkout(r.Context(), s.Services.Orders, req)
	if errors.Is(err, store.ErrEmptyCart) {
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		return
	}
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("session_id", s.ID),
	)
	middleware.RespondSuccess(w, http.StatusCreated, order, "Order placed")
}


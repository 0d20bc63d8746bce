package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"optic-storefront/internal/access"
	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"
	"optic-storefront/internal/view"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const alertScanMaxPages = 50

// InventoryRequest sets the stock level of one product
type InventoryRequest struct {
	Inventory *int `json:"inventory" validate:"required,gte=0"`
}

// BulkInventoryRequest sets the stock level of several products
type BulkInventoryRequest struct {
	Updates []domain.InventoryUpdate `json:"updates" validate:"required,min=1,max=200,dive"`
}

// OrderStatusRequest moves an order through its lifecycle
type OrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled refunded"`
}

// AppointmentStatusRequest moves an appointment through its lifecycle
type AppointmentStatusRequest struct {
	Status domain.AppointmentStatus `json:"status" validate:"required,oneof=pending confirmed cancelled completed no_show"`
}

// QuotationStatusRequest moves a quotation through its lifecycle
type QuotationStatusRequest struct {
	Status domain.QuotationStatus `json:"status" validate:"required,oneof=pending approved rejected converted expired"`
}

// StaffHandler handles the staff back office
type StaffHandler struct {
	logger            *zap.Logger
	lowStockThreshold int
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(lowStockThreshold int, logger *zap.Logger) *StaffHandler {
	return &StaffHandler{logger: logger, lowStockThreshold: lowStockThreshold}
}

// RegisterRoutes registers all staff routes
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/staff", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(h.logger, access.ManageInventory))
			r.Put("/products/{id}/inventory", h.UpdateInventory)
			r.Put("/inventory", h.BulkUpdateInventory)
			r.Get("/inventory/alerts", h.InventoryAlerts)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(h.logger, access.ManageOrders))
			r.Get("/orders", h.ListOrders)
			r.Put("/orders/{id}/status", h.UpdateOrderStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(h.logger, access.ManageAppointments))
			r.Get("/appointments", h.ListAppointments)
			r.Put("/appointments/{id}/status", h.UpdateAppointmentStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(h.logger, access.ManageQuotations))
			r.Post("/quotations/{id}/replies", h.ReplyToQuotation)
			r.Put("/quotations/{id}/status", h.UpdateQuotationStatus)
		})
	})
}

// UpdateInventory sets one product's stock level
func (h *StaffHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req InventoryRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	id := chi.URLParam(r, "id")
	product, err := s.Services.Products.UpdateInventory(r.Context(), id, *req.Inventory)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("Inventory updated", zap.String("product_id", id), zap.Int("inventory", *req.Inventory))
	middleware.RespondSuccess(w, http.StatusOK, product, "Inventory updated")
}

// BulkUpdateInventory applies several stock updates. A failure leaves the
// updates confirmed before it in place and reports them.
func (h *StaffHandler) BulkUpdateInventory(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req BulkInventoryRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	products, err := s.Services.Products.BulkUpdateInventory(r.Context(), req.Updates)
	if err != nil {
		var bulkErr *service.BulkInventoryError
		if !errors.As(err, &bulkErr) {
			middleware.RespondWithAPIError(w, err, h.logger)
			return
		}

		status := http.StatusBadGateway
		if apiErr, ok := apiclient.AsAPIError(bulkErr.Err); ok && apiErr.Status != 0 {
			status = apiErr.Status
		}
		applied := bulkErr.Applied
		if applied == nil {
			applied = []string{}
		}

		h.logger.Warn("Bulk inventory update partially applied",
			zap.String("failed_product_id", bulkErr.ProductID),
			zap.Strings("applied", applied),
			zap.Error(bulkErr.Err),
		)
		middleware.RespondWithErrorDetails(w, status, apiclient.UserMessage(bulkErr.Err), map[string]interface{}{
			"failedProductId": bulkErr.ProductID,
			"applied":         applied,
		})
		return
	}

	h.logger.Info("Bulk inventory update applied", zap.Int("count", len(products)))
	middleware.RespondSuccess(w, http.StatusOK, products, "Inventory updated")
}

// InventoryAlerts lists active products at or below the low-stock threshold
func (h *StaffHandler) InventoryAlerts(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	threshold := h.lowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "threshold must be a non-negative integer")
			return
		}
		threshold = v
	}

	products, err := allProducts(r.Context(), s.Services.Products)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, view.InventoryAlerts(products, threshold), "")
}

// allProducts walks the catalog page by page
func allProducts(ctx context.Context, products service.ProductService) ([]domain.Product, error) {
	var out []domain.Product
	for page := 1; page <= alertScanMaxPages; page++ {
		result, err := products.List(ctx, service.ProductFilter{
			ListParams: domain.ListParams{Page: page, Limit: 100},
		})
		if err != nil {
			return nil, err
		}
		out = append(out, result.Items...)
		if page >= result.Pagination.Pages {
			break
		}
	}
	return out, nil
}

// ListOrders returns every customer's orders
func (h *StaffHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
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

// UpdateOrderStatus moves an order to a new status
func (h *StaffHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req OrderStatusRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	id := chi.URLParam(r, "id")
	order, err := s.Services.Orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("Order status updated", zap.String("order_id", id), zap.String("status", string(req.Status)))
	middleware.RespondSuccess(w, http.StatusOK, order, "Order updated")
}

// ListAppointments returns every customer's appointments
func (h *StaffHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	filter := service.AppointmentFilter{
		ListParams: listParams(r),
		Status:     domain.AppointmentStatus(r.URL.Query().Get("status")),
	}
	page, err := s.Services.Appointments.List(r.Context(), filter)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondPage(w, page.Items, metaFor(page.Pagination))
}

// UpdateAppointmentStatus moves an appointment to a new status
func (h *StaffHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req AppointmentStatusRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	id := chi.URLParam(r, "id")
	appointment, err := s.Services.Appointments.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, appointment, "Appointment updated")
}

// ReplyToQuotation adds a staff reply to a quotation
func (h *StaffHandler) ReplyToQuotation(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req service.QuotationReplyRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	quotation, err := s.Services.Quotations.Reply(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusCreated, quotation, "Reply sent")
}

// UpdateQuotationStatus moves a quotation to a new status
func (h *StaffHandler) UpdateQuotationStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req QuotationStatusRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	quotation, err := s.Services.Quotations.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, quotation, "Quotation updated")
}

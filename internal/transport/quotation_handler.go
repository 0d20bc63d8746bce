package transport

import (
	"net/http"

	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// QuotationHandler handles customer quotation requests
type QuotationHandler struct {
	logger *zap.Logger
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{logger: logger}
}

// RegisterRoutes registers all quotation routes
func (h *QuotationHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/quotations", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.logger))
		r.Get("/", h.ListQuotations)
		r.Post("/", h.CreateQuotation)
		r.Get("/{id}", h.GetQuotation)
	})
}

// ListQuotations returns one page of quotations
func (h *QuotationHandler) ListQuotations(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	page, err := s.Services.Quotations.List(r.Context(), listParams(r))
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondPage(w, page.Items, metaFor(page.Pagination))
}

// CreateQuotation submits a quotation request
func (h *QuotationHandler) CreateQuotation(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req service.CreateQuotationRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	quotation, err := s.Services.Quotations.Create(r.Context(), req)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusCreated, quotation, "Quotation requested")
}

// GetQuotation returns a quotation with its replies
func (h *QuotationHandler) GetQuotation(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	quotation, err := s.Services.Quotations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, quotation, "")
}

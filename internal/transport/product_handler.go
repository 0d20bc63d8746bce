package transport

import (
	"net/http"

	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"
	"optic-storefront/internal/view"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductHandler serves the public catalog
type ProductHandler struct {
	logger *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(logger *zap.Logger) *ProductHandler {
	return &ProductHandler{logger: logger}
}

// RegisterRoutes registers the catalog routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
	})
}

// ListProducts returns one page of the catalog
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	page, err := s.Services.Products.List(r.Context(), productFilter(r))
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	// q narrows the fetched page without another backend round trip
	items := view.FilterProducts(page.Items, r.URL.Query().Get("q"))
	middleware.RespondPage(w, items, metaFor(page.Pagination))
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	product, err := s.Services.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, product, "")
}

func productFilter(r *http.Request) service.ProductFilter {
	q := r.URL.Query()
	return service.ProductFilter{
		ListParams: listParams(r),
		Category:   q.Get("category"),
		Brand:      q.Get("brand"),
		Search:     q.Get("search"),
		Sort:       q.Get("sort"),
	}
}

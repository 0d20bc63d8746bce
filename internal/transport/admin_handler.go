package transport

import (
	"net/http"

	"optic-storefront/internal/access"
	"optic-storefront/internal/domain"
	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RoleRequest assigns a role to an account
type RoleRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=user staff admin"`
}

// AdminHandler handles user and catalog administration
type AdminHandler struct {
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(logger *zap.Logger) *AdminHandler {
	return &AdminHandler{logger: logger}
}

// RegisterRoutes registers all admin routes
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(h.logger, access.ManageUsers))
			r.Get("/users", h.ListUsers)
			r.Put("/users/{id}/role", h.UpdateUserRole)
			r.Delete("/users/{id}", h.DeleteUser)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(h.logger, access.ManageProducts))
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)
		})
	})
}

// ListUsers returns one page of accounts
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	filter := service.UserFilter{
		ListParams: listParams(r),
		Role:       domain.Role(r.URL.Query().Get("role")),
	}
	if filter.Role != "" && !filter.Role.IsValid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown role")
		return
	}

	page, err := s.Services.Users.List(r.Context(), filter)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondPage(w, page.Items, metaFor(page.Pagination))
}

// UpdateUserRole assigns a role. Admins cannot change their own role.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req RoleRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	id := chi.URLParam(r, "id")
	if self, ok := middleware.GetUserID(r.Context()); ok && self == id {
		middleware.RespondWithError(w, http.StatusConflict, "cannot change your own role")
		return
	}

	user, err := s.Services.Users.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("User role updated", zap.String("user_id", id), zap.String("role", req.Role.String()))
	middleware.RespondSuccess(w, http.StatusOK, user, "Role updated")
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if self, ok := middleware.GetUserID(r.Context()); ok && self == id {
		middleware.RespondWithError(w, http.StatusConflict, "cannot delete your own account")
		return
	}

	if err := s.Services.Users.Delete(r.Context(), id); err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("User deleted", zap.String("user_id", id))
	middleware.RespondSuccess(w, http.StatusOK, nil, "User deleted")
}

// CreateProduct adds a product to the catalog
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var input service.ProductInput
	if !decodeRequest(w, r, &input, h.logger) {
		return
	}

	product, err := s.Services.Products.Create(r.Context(), input)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID))
	middleware.RespondSuccess(w, http.StatusCreated, product, "Product created")
}

// UpdateProduct replaces a product's editable fields
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var input service.ProductInput
	if !decodeRequest(w, r, &input, h.logger) {
		return
	}

	product, err := s.Services.Products.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, product, "Product updated")
}

// DeleteProduct removes a product from the catalog
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.Services.Products.Delete(r.Context(), id); err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	middleware.RespondSuccess(w, http.StatusOK, nil, "Product deleted")
}

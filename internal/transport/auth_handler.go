package transport

import (
	"net/http"

	"optic-storefront/internal/middleware"
	"optic-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthHandler handles sign-in and account endpoints
type AuthHandler struct {
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

// RegisterRoutes registers all auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.logger))
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/password", h.ChangePassword)
		})
	})
}

// Login signs the session in. The credential stays in the session; only the
// user is returned.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req service.LoginRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	user, err := s.User.Login(r.Context(), req)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	if err := s.Cart.Load(r.Context()); err != nil {
		h.logger.Warn("Failed to load cart after login", zap.String("session_id", s.ID), zap.Error(err))
	}

	h.logger.Info("User logged in", zap.String("user_id", user.ID), zap.String("session_id", s.ID))
	middleware.RespondSuccess(w, http.StatusOK, user, "Login successful")
}

// Register creates an account and signs the session in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req service.RegisterRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	user, err := s.User.Register(r.Context(), req)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	h.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("session_id", s.ID))
	middleware.RespondSuccess(w, http.StatusCreated, user, "Registration successful")
}

// Logout signs the session out. Local state is cleared even when the backend
// call fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	if err := s.User.Logout(r.Context()); err != nil {
		h.logger.Warn("Backend logout failed", zap.String("session_id", s.ID), zap.Error(err))
	}
	s.Cart.Reset(r.Context())

	middleware.RespondSuccess(w, http.StatusOK, nil, "Logged out")
}

// Me refreshes the cached user from the backend
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	user, err := s.User.Refresh(r.Context())
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, user, "")
}

// UpdateProfile saves the profile form
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req service.UpdateProfileRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	user, err := s.User.UpdateProfile(r.Context(), req)
	if err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, user, "Profile updated")
}

// ChangePassword changes the account password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var req service.ChangePasswordRequest
	if !decodeRequest(w, r, &req, h.logger) {
		return
	}

	if err := s.User.ChangePassword(r.Context(), req); err != nil {
		middleware.RespondWithAPIError(w, err, h.logger)
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, nil, "Password changed")
}

// Package transport exposes the storefront's HTTP endpoints. Handlers act on
// the caller's session stores and services; every response uses the same
// envelope as the backend.
package transport

import (
	"net/http"
	"strconv"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
	"optic-storefront/internal/middleware"
	"optic-storefront/internal/session"

	"go.uber.org/zap"
)

// currentSession returns the request's session or answers 500
func currentSession(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*session.Session, bool) {
	s, ok := middleware.GetSession(r.Context())
	if !ok {
		logger.Error("Session not found in context", zap.String("path", r.URL.Path))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return s, true
}

// decodeRequest decodes and validates the body into v, answering 400 on failure
func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.String("path", r.URL.Path), zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// listParams reads page and limit from the query string
func listParams(r *http.Request) domain.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return domain.ListParams{Page: page, Limit: limit}.Normalize()
}

func metaFor(p domain.Pagination) apiclient.Meta {
	return apiclient.Meta{Pagination: &p}
}

package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"optic-storefront/internal/apiclient"

	"go.uber.org/zap"
)

// Envelope is the response body of every storefront endpoint. It mirrors the
// backend envelope so that browser code handles both the same way.
type Envelope struct {
	Success   bool                   `json:"success"`
	Data      interface{}            `json:"data,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Meta      *apiclient.Meta        `json:"meta,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// RespondWithError sends an error envelope
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithErrorDetails(w, statusCode, message, nil)
}

// RespondWithErrorDetails sends an error envelope with additional details
func RespondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	respondWithErrorCode(w, statusCode, http.StatusText(statusCode), message, details)
}

func respondWithErrorCode(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	if code == "" {
		code = http.StatusText(statusCode)
	}
	RespondWithJSON(w, statusCode, Envelope{
		Success:   false,
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	RespondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// RespondWithAPIError translates a backend failure. An upstream status is
// passed through; a request that never reached the backend becomes 502.
func RespondWithAPIError(w http.ResponseWriter, err error, logger *zap.Logger) {
	apiErr, ok := apiclient.AsAPIError(err)
	if !ok {
		logger.Error("Unexpected error", zap.Error(err))
		RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := apiErr.Status
	if status == 0 {
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Backend request failed", zap.Int("status", apiErr.Status), zap.Error(err))
	} else {
		logger.Debug("Backend rejected request", zap.Int("status", apiErr.Status), zap.Error(err))
	}

	var details map[string]interface{}
	if apiErr.Details != nil {
		details = map[string]interface{}{"upstream": apiErr.Details}
	}
	respondWithErrorCode(w, status, apiErr.Code, apiclient.UserMessage(err), details)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondSuccess sends a success envelope around data
func RespondSuccess(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	RespondWithJSON(w, statusCode, Envelope{Success: true, Data: data, Message: message})
}

// RespondPage sends a success envelope carrying pagination meta
func RespondPage(w http.ResponseWriter, data interface{}, meta apiclient.Meta) {
	RespondWithJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Meta: &meta})
}

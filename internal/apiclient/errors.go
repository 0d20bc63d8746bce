package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork marks failures where no HTTP response was received
	ErrNetwork = errors.New("network error")
	// ErrMalformedResponse marks responses that are not a valid envelope
	ErrMalformedResponse = errors.New("malformed response")
)

// APIError is the normalized failure shape for every backend call.
// Status is 0 when the request never produced an HTTP response.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details any
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError extracts an *APIError from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an APIError with the given HTTP status
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

// IsNotFound reports whether the backend answered 404
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether the backend rejected the credential
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

func networkError(err error) *APIError {
	return &APIError{
		Status:  0,
		Message: fmt.Sprintf("network error: %v", err),
		Err:     fmt.Errorf("%w: %v", ErrNetwork, err),
	}
}

// UserMessage returns a human-readable message for display.
// It never returns an empty string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if text := http.StatusText(apiErr.Status); text != "" {
			return text
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "unexpected error"
}

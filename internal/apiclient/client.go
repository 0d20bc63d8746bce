package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"optic-storefront/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer credential attached to each request
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Meta is the optional meta block of the envelope
type Meta struct {
	Pagination *domain.Pagination `json:"pagination,omitempty"`
}

// Response carries the non-data parts of a successful envelope
type Response struct {
	Status  int
	Message string
	Meta    Meta
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Details any             `json:"details"`
	Meta    *Meta           `json:"meta"`
}

// Client is the single HTTP wrapper used by every service
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
}

// New creates a Client for the backend at baseURL
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		logger: logger,
	}
}

// NewWithHTTPClient creates a Client around an existing http.Client
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// WithTokenSource returns a copy of the client bound to a credential source.
// The underlying connection pool is shared.
func (c *Client) WithTokenSource(ts TokenSource) *Client {
	clone := *c
	clone.tokens = ts
	return &clone
}

// Get issues a GET request and decodes data into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) (*Response, error) {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string, out any) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do performs a single attempt against the backend. Any non-success
// outcome is returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if success && len(bytes.TrimSpace(raw)) == 0 {
		return &Response{Status: resp.StatusCode}, nil
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if success {
				return nil, &APIError{
					Status:  resp.StatusCode,
					Message: "invalid response from server",
					Err:     fmt.Errorf("%w: %v", ErrMalformedResponse, err),
				}
			}
			// Non-JSON error pages (proxies, gateways)
			return nil, &APIError{
				Status:  resp.StatusCode,
				Message: http.StatusText(resp.StatusCode),
			}
		}
	}

	if !success || !env.Success {
		return nil, errorFromEnvelope(resp.StatusCode, &env)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &APIError{
				Status:  resp.StatusCode,
				Message: "invalid response from server",
				Err:     fmt.Errorf("%w: decode data: %v", ErrMalformedResponse, err),
			}
		}
	}

	result := &Response{Status: resp.StatusCode, Message: env.Message}
	if env.Meta != nil {
		result.Meta = *env.Meta
	}
	return result, nil
}

func errorFromEnvelope(status int, env *envelope) *APIError {
	message := env.Message
	if message == "" {
		message = env.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{
		Status:  status,
		Code:    env.Error,
		Message: message,
		Details: env.Details,
	}
}

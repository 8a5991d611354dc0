// API client for the wedding-planning backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wedx/internal/metrics"
	"github.com/desertthunder/wedx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://localhost:8000/api"
	defaultTimeout = 30 * time.Second
	maxBodySize    = 4 << 20
)

// APIService makes requests against the backend REST API.
type APIService struct {
	baseURL       string
	httpClient    *http.Client
	limiter       *rate.Limiter
	logger        *log.Logger
	authenticated bool
}

// APIOptions configures [NewAPIService]. Zero values select defaults.
type APIOptions struct {
	BaseURL           string
	HTTPClient        *http.Client       // base client; its transport is wrapped when TokenSource is set
	TokenSource       oauth2.TokenSource // nil means unauthenticated
	Timeout           time.Duration
	RequestsPerSecond float64 // zero disables rate limiting
	Burst             int
	Logger            *log.Logger
}

// NewAPIService creates a new API service instance for the backend.
func NewAPIService(opts APIOptions) *APIService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	base := http.DefaultTransport
	if opts.HTTPClient != nil && opts.HTTPClient.Transport != nil {
		base = opts.HTTPClient.Transport
	}

	transport := base
	if opts.TokenSource != nil {
		transport = &oauth2.Transport{Source: oauth2.ReuseTokenSource(nil, opts.TokenSource), Base: base}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &APIService{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		httpClient:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		limiter:       rate.NewLimiter(limit, burst),
		logger:        shared.WithLogger(opts.Logger, "component", "api"),
		authenticated: opts.TokenSource != nil,
	}
}

// Authenticated reports whether requests carry a bearer token.
func (a *APIService) Authenticated() bool {
	return a.authenticated
}

// BaseURL returns the backend root all paths are joined to.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// APIError is a non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match [shared.ErrAPIRequest], and [shared.ErrNotAuthenticated] on 401.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	if e.StatusCode == http.StatusUnauthorized {
		errs = append(errs, shared.ErrNotAuthenticated)
	}
	return errs
}

// IsNotFound reports whether err means the resource did not exist:
// HTTP 404, or a backend message containing "not found".
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound || strings.Contains(strings.ToLower(apiErr.Message), "not found")
}

// newAPIError builds an [APIError] from a response body, using the backend's message, error or detail field when present.
func newAPIError(status int, requestID string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}

	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
		Detail  string          `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if len(apiErr.Message) > 200 {
			apiErr.Message = apiErr.Message[:200]
		}
		return apiErr
	}

	var msg string
	var msgs []string
	switch {
	case json.Unmarshal(payload.Message, &msg) == nil && msg != "":
		apiErr.Message = msg
	case json.Unmarshal(payload.Message, &msgs) == nil && len(msgs) > 0:
		apiErr.Message = strings.Join(msgs, "; ")
	case payload.Error != "":
		apiErr.Message = payload.Error
	default:
		apiErr.Message = payload.Detail
	}
	return apiErr
}

// resolve joins path (which may carry a query string) onto the base URL.
func (a *APIService) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	full, err := url.JoinPath(a.baseURL, ref.Path)
	if err != nil {
		return "", err
	}
	if ref.RawQuery != "" {
		full += "?" + ref.RawQuery
	}
	return full, nil
}

// send waits on the limiter, sends the request and reads the body. Failures before a response are wrapped in [shared.ErrAPIRequest].
func (a *APIService) send(ctx context.Context, op, method, path string, body any, header http.Header) (*http.Response, []byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}

	fullURL, err := a.resolve(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendRequest(op, 0, time.Since(start))
		a.logger.Debug("request failed", "op", op, "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}
	defer resp.Body.Close()
	metrics.RecordBackendRequest(op, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	a.logger.Debug("request", "op", op, "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))
	return resp, data, nil
}

// doRequest performs a JSON request and decodes a 2xx response into result.
func (a *APIService) doRequest(ctx context.Context, op, method, path string, body, result any, header http.Header) error {
	resp, data, err := a.send(ctx, op, method, path, body, header)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var requestID string
		if resp.Request != nil {
			requestID = resp.Request.Header.Get("X-Request-ID")
		}
		return newAPIError(resp.StatusCode, requestID, data)
	}

	if result == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decodeBody(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeBody unmarshals data into result, unwrapping a {"data": ...} envelope when present.
func decodeBody(data []byte, result any) error {
	var envelope map[string]json.RawMessage
	if json.Unmarshal(data, &envelope) == nil {
		if inner, ok := envelope["data"]; ok {
			return json.Unmarshal(inner, result)
		}
	}
	return json.Unmarshal(data, result)
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response, whatever its status.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	resp, body, err := a.send(ctx, "raw.get", http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health checks that the backend is reachable.
func (a *APIService) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := a.doRequest(ctx, "health", http.MethodGet, "/health", nil, &status, nil); err != nil {
		return nil, err
	}
	if status.Status == "" {
		status.Status = "ok"
	}
	return &status, nil
}

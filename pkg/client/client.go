// Package client provides the HTTP client for the corpus backend REST API.
//
// Every call returns a typed value or an error; transport failures, non-2xx
// statuses and malformed bodies are all converted into *APIError at this
// boundary. The client never retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for backend API operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_api_requests_total",
		Help: "Total backend API requests by resource and status",
	}, []string{"resource", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "admin_api_request_duration_seconds",
		Help:    "Backend API request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_api_errors_total",
		Help: "Total backend API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of failed calls.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents connection and timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents bodies that could not be decoded.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassUnexpected represents a status outside the expected set that is not 4xx/5xx.
	ErrorClassUnexpected ErrorClass = "unexpected"
)

// DefaultBaseURL is the production corpus backend.
const DefaultBaseURL = "https://backend2.swecha.org/api/v1"

// Client is the corpus backend client.
type Client struct {
	httpClient *http.Client
	config     Config
	baseURL    *url.URL
	logger     zerolog.Logger
	now        func() time.Time

	mu    sync.RWMutex
	token string
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, including the version prefix (e.g. ".../api/v1").
	BaseURL string

	// Token is the bearer token; it can also be set after login with SetToken.
	Token string

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration

	// UserAgent header sent with every request.
	UserAgent string
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string) Config {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Config{
		BaseURL:   baseURL,
		Timeout:   30 * time.Second,
		UserAgent: "swecha-admin/0.1.0",
	}
}

// New creates a new backend client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config:  cfg,
		baseURL: base,
		logger:  log.With().Str("component", "api-client").Logger(),
		now:     time.Now,
		token:   cfg.Token,
	}, nil
}

// SetToken replaces the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Do performs an HTTP request with auth headers, metrics and error
// normalization. Non-2xx responses are returned as-is for the caller to
// interpret; only transport failures produce an error.
func (c *Client) Do(req *http.Request, resource string) (*http.Response, error) {
	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("resource", resource).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("Executing backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("resource", resource).Msg("HTTP request failed")
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		apiRequestsTotal.WithLabelValues(resource, "network_error").Inc()
		return nil, &APIError{ErrorClass: ErrorClassNetwork, Message: "Network error", Err: err}
	}

	apiRequestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// call executes a request and reads the full body. Any status outside
// expected becomes an *APIError carrying the backend's detail text.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType, resource, fallback string, expected ...int) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.Do(req, resource)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return resp.StatusCode, nil, &APIError{StatusCode: resp.StatusCode, ErrorClass: ErrorClassNetwork, Message: "Network error", Err: err}
	}

	for _, status := range expected {
		if resp.StatusCode == status {
			return resp.StatusCode, data, nil
		}
	}

	class := errorClassForStatus(resp.StatusCode)
	apiErrorsTotal.WithLabelValues(string(class)).Inc()
	detail := errorDetail(data, fallback)

	c.logger.Warn().
		Str("resource", resource).
		Str("method", method).
		Int("status_code", resp.StatusCode).
		Str("error_class", string(class)).
		Str("detail", detail).
		Msg("Backend request error")

	return resp.StatusCode, data, &APIError{StatusCode: resp.StatusCode, ErrorClass: class, Message: detail}
}

// Body shapes a response must have before it is decoded.
const (
	shapeObject byte = '{'
	shapeList   byte = '['
)

// getJSON performs a GET that must answer 200 with a JSON object.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, resource string, out any) error {
	return c.get(ctx, path, query, resource, shapeObject, out)
}

// getList performs a GET that must answer 200 with a JSON array.
func (c *Client) getList(ctx context.Context, path string, query url.Values, resource string, out any) error {
	return c.get(ctx, path, query, resource, shapeList, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, resource string, shape byte, out any) error {
	_, data, err := c.call(ctx, http.MethodGet, path, query, nil, "", resource, "Unknown error", http.StatusOK)
	if err != nil {
		return err
	}
	return c.decode(data, resource, shape, out)
}

// sendJSON encodes payload as the request body and returns the raw response.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, resource, fallback string, expected ...int) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal %s payload: %w", resource, err)
		}
		body = bytes.NewReader(encoded)
	}
	return c.call(ctx, method, path, nil, body, "application/json", resource, fallback, expected...)
}

// decode unmarshals data into out. A body that is not of the given shape,
// including a bare null, is malformed.
func (c *Client) decode(data []byte, resource string, shape byte, out any) error {
	err := checkShape(data, shape)
	if err == nil {
		err = json.Unmarshal(data, out)
	}
	if err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().Err(err).Str("resource", resource).Msg("Unexpected response format")
		return &APIError{
			StatusCode: http.StatusOK,
			ErrorClass: ErrorClassDecode,
			Message:    "Unexpected response format from the server",
			Err:        fmt.Errorf("%w: %v", ErrMalformedResponse, err),
		}
	}
	return nil
}

func checkShape(data []byte, shape byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty body")
	}
	if trimmed[0] != shape {
		want := "object"
		if shape == shapeList {
			want = "array"
		}
		return fmt.Errorf("expected JSON %s, got %.20q", want, trimmed)
	}
	return nil
}

// url joins path onto the base URL and encodes query.
func (c *Client) url(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// pageQuery builds the skip/limit query used by list endpoints.
func pageQuery(skip, limit int) url.Values {
	return url.Values{
		"skip":  []string{strconv.Itoa(skip)},
		"limit": []string{strconv.Itoa(limit)},
	}
}

// messageOr returns the JSON "message" field of body, or fallback.
func messageOr(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return fallback
	}
	return payload.Message
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

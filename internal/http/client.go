// Package http provides the HTTP client used to talk to the catalog and the
// notification server.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent identifies the updater to remote services.
const DefaultUserAgent = "sharkusmanch/modrinth-updater"

// RetryConfig configures retry behavior for the HTTP client.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns a single-attempt configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  1,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// StatusError is returned by GetOK when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client is an HTTP client with optional retry logic.
type Client struct {
	httpClient *http.Client
	retry      RetryConfig
	userAgent  string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new HTTP client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		retry:     DefaultRetryConfig(),
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.retry.MaxAttempts < 1 {
		c.retry.MaxAttempts = 1
	}

	return c
}

// Response wraps an HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do performs an HTTP request, retrying transport errors and retryable status
// codes while attempts remain.
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	var lastErr error
	var bodyBytes []byte

	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		_ = req.Body.Close()
	}

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		attemptReq := req.Clone(ctx)
		if attemptReq.Header.Get("User-Agent") == "" {
			attemptReq.Header.Set("User-Agent", c.userAgent)
		}

		c.logger.Debug("HTTP request",
			"method", req.Method,
			"url", req.URL.String(),
			"attempt", attempt,
			"max_attempts", c.retry.MaxAttempts,
		)

		resp, err := c.httpClient.Do(attemptReq)
		if err != nil {
			lastErr = err
			c.logger.Warn("HTTP request failed",
				"method", req.Method,
				"url", req.URL.String(),
				"attempt", attempt,
				"error", err,
			)
			if attempt < c.retry.MaxAttempts {
				if err := c.wait(ctx, attempt); err != nil {
					return nil, err
				}
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		if c.shouldRetry(resp.StatusCode) && attempt < c.retry.MaxAttempts {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
			c.logger.Warn("HTTP request returned retryable status",
				"status", resp.StatusCode,
				"attempt", attempt,
			)
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		return &Response{
			StatusCode: resp.StatusCode,
			Body:       body,
			Headers:    resp.Header,
		}, nil
	}

	if c.retry.MaxAttempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}

// Get performs a GET request. query may be nil.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.Do(ctx, req)
}

// GetOK performs a GET request and returns a *StatusError for non-2xx responses.
func (c *Client) GetOK(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	resp, err := c.Get(ctx, rawURL, query)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		body := string(resp.Body)
		if len(body) > 200 {
			body = body[:200]
		}
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Body: body}
	}
	return resp, nil
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, rawURL string, contentType string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := c.calculateDelay(attempt)
	c.logger.Debug("Retrying after delay", "delay", delay)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// calculateDelay calculates the delay for a given attempt using exponential backoff.
func (c *Client) calculateDelay(attempt int) time.Duration {
	delay := float64(c.retry.InitialDelay) * math.Pow(2, float64(attempt-1))

	if delay > float64(c.retry.MaxDelay) {
		return c.retry.MaxDelay
	}

	return time.Duration(delay)
}

// shouldRetry returns true if the status code indicates a retryable error.
func (c *Client) shouldRetry(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// CheckConnectivity performs a simple connectivity check to the given URL.
func (c *Client) CheckConnectivity(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connectivity check failed: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return fmt.Errorf("connectivity check returned status %d", resp.StatusCode)
}

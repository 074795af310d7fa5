package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"showroom-etl/internal/metrics"
	"showroom-etl/internal/types"
)

// HTTPClient fetches showroom pages with the configured headers.
// Requests are not retried; a failed page is reported to the caller.
type HTTPClient struct {
	client *http.Client
	config *types.Config
	logger types.Logger
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config *types.Config, logger types.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
	}
}

// Get performs a single GET request and returns the body of a 200 response
func (h *HTTPClient) Get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// The site serves a stripped page to default agents.
	req.Header.Set("User-Agent", h.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range h.config.Headers {
		req.Header.Set(k, v)
	}

	h.logger.Debugf("Making request to %s", url)

	resp, err := h.client.Do(req)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: request to %s failed: %v", types.ErrNetworkFailure, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.PagesFetched.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("%w: unexpected status code: %d", types.ErrNetworkFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.PagesFetched.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: failed to read response body: %v", types.ErrNetworkFailure, err)
	}

	metrics.PagesFetched.WithLabelValues("ok").Inc()
	h.logger.Debugf("Successfully retrieved %d bytes from %s", len(body), url)
	return body, nil
}

// GetPageContent returns the body of url as a string
func (h *HTTPClient) GetPageContent(ctx context.Context, url string) (string, error) {
	body, err := h.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Close releases idle connections
func (h *HTTPClient) Close() {
	h.client.CloseIdleConnections()
}

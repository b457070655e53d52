// Package httpclient fetches JSON resources from REST endpoints.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"golang.org/x/time/rate"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

type Option func(*Client)

// WithRateLimit paces requests at rps requests per second with the given
// burst. The data API throttles aggressive pagination, so list-heavy callers
// should set this.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetResource fetches baseURL+endpoint and decodes the JSON body into T.
// Responses with a status outside okStatuses fail with the status and a body
// snippet.
func GetResource[T any](ctx context.Context, c *Client, endpoint string, params url.Values, okStatuses []int) (T, error) {
	var zero T

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return zero, fmt.Errorf("couldn't wait for rate limiter: %w", err)
		}
	}

	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return zero, fmt.Errorf("couldn't create request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("couldn't get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if !slices.Contains(okStatuses, resp.StatusCode) {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return zero, fmt.Errorf("unexpected status %d for %s: %s", resp.StatusCode, endpoint, snippet)
	}

	var resource T
	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return zero, fmt.Errorf("couldn't decode %s response: %w", endpoint, err)
	}
	return resource, nil
}

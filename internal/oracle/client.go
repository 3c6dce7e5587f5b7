package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single oracle request.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is kept in messages.
const maxErrorBody = 512

// Client is a thin JSON-over-HTTP client shared by the oracles. It
// applies a per-request timeout and an optional rate limit. It never
// retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// NewClient creates a client with the given per-request timeout and
// request rate. A ratePerSec of zero or less disables rate limiting.
func NewClient(timeout time.Duration, ratePerSec float64) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    timeout,
	}
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	oracle string,
	endpoint string,
	result interface{},
) error {
	return c.do(ctx, oracle, http.MethodGet, endpoint, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	oracle string,
	endpoint string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, oracle, http.MethodPost, endpoint, body, result)
}

// do builds the request, waits for the rate limiter, and decodes a
// 200 response into result. Any other status is a ProtocolError.
func (c *Client) do(
	ctx context.Context,
	oracle string,
	method string,
	endpoint string,
	body interface{},
	result interface{},
) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Endpoints carry API keys; keep the URL out of the message.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("executing %s request: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &ProtocolError{
			Oracle:     oracle,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(respBody), maxErrorBody),
		}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &ProtocolError{
			Oracle:     oracle,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("decoding response: %v", err),
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

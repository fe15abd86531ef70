// Package upstream fetches live counter values from Docker Hub and GitHub.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/internal/logger"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 256

// Client performs JSON GET requests against an upstream API.
type Client struct {
	http      *http.Client
	userAgent string
	token     string
}

// NewClient creates a client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = contract.DefaultHTTPTimeout
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: contract.DefaultUserAgent,
	}
}

// WithToken returns a copy of the client that sends a bearer token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// getJSON decodes the response body of url into out.
// Any transport, status or decode failure is reported as an UpstreamError for source.
func (c *Client) getJSON(ctx context.Context, source, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &contract.UpstreamError{Source: source, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &contract.UpstreamError{Source: source, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	logger.Debug().
		Str("source", source).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("upstream response")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return contract.NewUpstreamError(source, "unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return contract.NewUpstreamError(source, "decode response: %w", err)
	}
	return nil
}

// sourceName formats the label carried by errors and logs.
func sourceName(kind, repository string) string {
	return fmt.Sprintf("%s %s", kind, repository)
}

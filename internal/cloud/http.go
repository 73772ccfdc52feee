package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient talks to the key-value endpoints of another LiftLog server.
type HTTPClient struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
	log        *slog.Logger
}

// NewHTTPClient creates a client for the server at serverURL.
func NewHTTPClient(serverURL, apiKey string, log *slog.Logger) *HTTPClient {
	return &HTTPClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoff: time.Second,
		log:     log,
	}
}

func (c *HTTPClient) endpoint(key string) string {
	return c.serverURL + "/api/v1/kv/" + url.PathEscape(key)
}

// Get fetches the value. A 404 means the key is absent.
func (c *HTTPClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var found bool
	err := c.do(ctx, "GET "+key, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(key), nil)
	}, func(resp *http.Response, body []byte) (bool, error) {
		switch resp.StatusCode {
		case http.StatusOK:
			value, found = body, true
			return true, nil
		case http.StatusNotFound:
			return true, nil
		}
		return false, fmt.Errorf("get %s failed (status %d): %s", key, resp.StatusCode, body)
	})
	return value, found, err
}

// Set PUTs the value.
func (c *HTTPClient) Set(ctx context.Context, key string, value []byte) error {
	if err := checkSize(value); err != nil {
		return err
	}
	return c.do(ctx, "PUT "+key, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint(key), bytes.NewReader(value))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, func(resp *http.Response, body []byte) (bool, error) {
		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
			return true, nil
		}
		if resp.StatusCode == http.StatusRequestEntityTooLarge {
			return true, ErrValueTooLarge
		}
		return false, fmt.Errorf("put %s failed (status %d): %s", key, resp.StatusCode, body)
	})
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// do retries up to 3 times with exponential backoff. handle reports whether
// the response is final; a final response ends the retries with its error.
func (c *HTTPClient) do(ctx context.Context, op string, build func() (*http.Request, error), handle func(*http.Response, []byte) (bool, error)) error {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
			c.log.Debug("retrying cloud request", "op", op, "attempt", attempt+1, "error", lastErr)
		}

		req, err := build()
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		final, err := handle(resp, body)
		if final {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("after 3 attempts: %w", lastErr)
}

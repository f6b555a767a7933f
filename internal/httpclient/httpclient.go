// Package httpclient is a thin net/http wrapper shared by every
// component that talks to the seller API: it owns the base URL,
// default headers, and a transport-level retry policy so callers never
// hand-roll their own request loop.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obscura-network/acp-seller-runtime/internal/retry"
)

// Client is a small net/http wrapper with a baked-in retry loop for
// 429/5xx responses and transient network errors.
type Client struct {
	http    *http.Client
	baseURL string
	headers map[string]string
	retry   retry.Options
}

// New creates a Client against baseURL. headers are sent on every
// request (typically Authorization/Content-Type).
func New(baseURL string, headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		headers: headers,
		retry: retry.Options{
			MaxAttempts:    3,
			BaseDelay:      500 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			JitterFraction: 0.2,
		},
	}
}

// Response is the decoded result of a request: status code plus raw
// body, so callers can both check the status and unmarshal the body.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r Response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do issues method against path (joined to the client's base URL) with
// an optional JSON body, retrying transport errors and 429/5xx
// responses per the client's retry policy.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}) (Response, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("encode request body: %w", err)
		}
		payload = encoded
	}

	return retry.WithRetry(ctx, c.retry, func(ctx context.Context) (Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return Response{}, fmt.Errorf("build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return Response{}, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return Response{}, fmt.Errorf("read response body: %w", err)
		}

		out := Response{StatusCode: resp.StatusCode, Body: data}
		if out.ok() {
			return out, nil
		}

		httpErr := &retry.HTTPError{StatusCode: resp.StatusCode, Message: string(data)}
		if retry.IsRetryableError(httpErr) {
			log.Warn().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("seller API request failed, will retry")
		}
		return out, httpErr
	})
}

// Get issues a GET and returns the decoded response.
func (c *Client) Get(ctx context.Context, path string) (Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST with a JSON body and returns the decoded response.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

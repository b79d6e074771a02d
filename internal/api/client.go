package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client is a thin HTTP client for the CrowdBricks admin REST API.
// It handles Bearer token authentication, JSON marshaling, response
// envelope unwrapping, and automatic retry with exponential backoff
// on HTTP 429.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a new API client. The baseURL should be the root URL
// of the platform API (e.g., https://api.crowdbricks.example). The token
// is an admin session token used for Bearer authentication.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(
	ctx context.Context,
	path string,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Post performs an HTTP POST request with a JSON body and unmarshals
// the JSON response.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Patch performs an HTTP PATCH request with a JSON body.
func (c *Client) Patch(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPatch, path, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do is the core HTTP method that builds the request, handles auth,
// rate limiting with exponential backoff, and JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Rebuild the body reader on retries since it was consumed.
		if attempt > 0 && body != nil {
			data, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(
			ctx, method, url, bodyReader,
		)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			waitDuration := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf(
				"rate limited (429) on %s %s", method, path,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return &AuthError{
				Message: fmt.Sprintf(
					"session expired or invalid token for %s", c.baseURL,
				),
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    errorMessage(respBody),
			}
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}

		if err := decodeData(respBody, result); err != nil {
			return fmt.Errorf(
				"unmarshaling response from %s %s: %w",
				method, path, err,
			)
		}

		return nil
	}

	return fmt.Errorf(
		"max retries (%d) exceeded: %w", c.maxRetries, lastErr,
	)
}

// envelope mirrors the backend's response wrapper. Some endpoints wrap
// the payload once ({"data": ...}), some twice ({"data": {"data": ...}}),
// and some not at all; the shape is never trusted at the call site.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// decodeData unwraps the response envelope (handling both single and
// double wrapping) and unmarshals the payload into result.
func decodeData(raw []byte, result interface{}) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Data) == 0 {
		// Bare payload, or not an object at all (e.g. a top-level array).
		return json.Unmarshal(raw, result)
	}

	var inner envelope
	if err := json.Unmarshal(env.Data, &inner); err == nil && len(inner.Data) > 0 {
		return json.Unmarshal(inner.Data, result)
	}

	return json.Unmarshal(env.Data, result)
}

// errorMessage extracts a backend-reported error string from a response
// body, falling back to the raw body.
func errorMessage(respBody []byte) string {
	var env envelope
	if json.Unmarshal(respBody, &env) == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}

	msg := strings.TrimSpace(string(respBody))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

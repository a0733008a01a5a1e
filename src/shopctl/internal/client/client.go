// Package client is an HTTP client for the shopd API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to one shopd server with an optional admin bearer token
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// ErrorResponse is the server's JSON error body
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// APIError is returned for every response with status >= 400
type APIError struct {
	StatusCode int
	ErrorCode  string // qualified "<domain>.<code>", empty for non-JSON bodies
	Message    string
	Details    map[string]interface{}
	RetryAfter time.Duration
}

// hints maps qualified codes to a next step for the operator
var hints = map[string]string{
	"auth.no_token":         "Authentication required. Run 'shopctl login' with a token from 'shopd token'.",
	"auth.token_invalid":    "The stored token was rejected. Run 'shopctl login' again.",
	"auth.token_expired":    "The stored token has expired. Mint a new one with 'shopd token'.",
	"auth.forbidden":        "The token does not carry admin access.",
	"storage.configuration": "Check the storage credentials with 'shopctl storage get --reveal'.",
	"storage.upstream_io":   "The storage provider is unreachable. See 'shopctl storage status'.",
	"storage.unavailable":   "The storage provider is unreachable. See 'shopctl storage status'.",
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.ErrorCode != "" {
		fmt.Fprintf(&b, "%s: %s (HTTP %d)", e.ErrorCode, e.Message, e.StatusCode)
	} else {
		fmt.Fprintf(&b, "HTTP %d: %s", e.StatusCode, e.Message)
	}
	if cause, ok := e.Details["cause"].(string); ok && cause != "" {
		fmt.Fprintf(&b, "\nCause: %s", cause)
	}

	hint, ok := hints[e.ErrorCode]
	switch {
	case ok:
	case e.StatusCode == http.StatusUnauthorized:
		hint = hints["auth.no_token"]
	case e.StatusCode == http.StatusTooManyRequests:
		hint = fmt.Sprintf("Rate limited; retry in %s.", e.RetryAfter)
	}
	if hint != "" {
		b.WriteString("\nHint: " + hint)
	}
	return b.String()
}

// IsCode reports whether err wraps an APIError with the given qualified code
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == code
}

// New creates a client for baseURL. Uploads can be large, hence the long timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete sends a DELETE; shopd takes the target in a JSON body
func (c *Client) Delete(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodDelete, path, body, result)
}

// Do sends a prepared request (multipart uploads) with the client's token and
// decodes the response into result
func (c *Client) Do(req *http.Request, result interface{}) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.Do(req, result)
}

func decodeResponse(resp *http.Response, result interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			apiErr.ErrorCode = errResp.Error
			apiErr.Message = errResp.Message
			apiErr.Details = errResp.Details
		}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
		return apiErr
	}

	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

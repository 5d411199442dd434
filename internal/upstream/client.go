// Package upstream implements the HTTP clients for the backend API that owns
// contacts, invoices and the PEPPOL access point integration.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	dErrors "fakturo/pkg/domain-errors"
	"fakturo/pkg/platform/sentinel"
)

const defaultTimeout = 10 * time.Second

// Client is the shared transport for all upstream API calls. Feature clients
// embed it and add typed methods on top.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// inject short timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates the shared upstream transport.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "upstream base URL is required")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do performs one JSON request against the upstream API. A non-nil out is
// decoded from the response body on 2xx.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "encode request body")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "upstream request failed")
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, method, path); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "decode upstream response")
	}
	return nil
}

func (c *Client) checkStatus(resp *http.Response, method, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Upstream error bodies carry an error code and description; keep the
	// description for the log line only.
	var apiErr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
	c.logger.Warn("upstream call failed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"upstream_error", apiErr.Error,
	)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return sentinel.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return dErrors.New(dErrors.CodeUnauthorized, "upstream rejected credentials")
	case http.StatusConflict:
		return dErrors.New(dErrors.CodeConflict, "upstream reported a conflict")
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return dErrors.Newf(dErrors.CodeInvalidInput, "upstream rejected request: %s", apiErr.Error)
	default:
		return dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("upstream returned status %d", resp.StatusCode))
	}
}

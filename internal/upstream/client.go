package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-admin-gateway/pkg/config"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

// Observer receives upstream call timings. Implemented by the metrics
// service.
type Observer interface {
	ObserveUpstreamCall(method, path string, status int, duration time.Duration)
}

// Client is the shared JSON client every resource client is built on. It
// attaches the caller's bearer token when present (the backend decides what
// an absent credential means) and keeps a cookie jar so upstream session
// cookies survive across calls, matching the front-end's credentials mode.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		logger:   logger,
		observer: observer,
	}
}

// errorBody is the upstream failure contract: HTTP status plus {message}.
type errorBody struct {
	Message string `json:"message"`
}

// Do issues one JSON request. out may be nil for calls whose body is
// irrelevant. No retries: transient failures surface to the caller.
func (c *Client) Do(ctx context.Context, method, path, token string, params url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, start)
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	defer resp.Body.Close()
	c.observe(method, path, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		_ = json.Unmarshal(raw, &eb)
		return appErrors.FromStatus(resp.StatusCode, eb.Message)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("decode upstream response for %s %s", method, path))
	}
	return nil
}

// Get is shorthand for a query-only call.
func (c *Client) Get(ctx context.Context, path, token string, params url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, token, params, nil, out)
}

// Post is shorthand for a JSON creation call.
func (c *Client) Post(ctx context.Context, path, token string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, token, nil, body, out)
}

// Patch is shorthand for a partial update.
func (c *Client) Patch(ctx context.Context, path, token string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, token, nil, body, out)
}

// Delete is shorthand for a removal call.
func (c *Client) Delete(ctx context.Context, path, token string) error {
	return c.Do(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// BaseURL exposes the configured upstream root (used by the upload client).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HTTPClient exposes the underlying http.Client for non-JSON calls.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(method, path, status, time.Since(start))
	}
}

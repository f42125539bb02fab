// Package gateway performs typed request/response exchanges with the
// audit service. Every response decodes through an explicit wire struct at
// this boundary; nothing downstream ever sees untyped JSON. The gateway
// never mutates client state; callers translate outcomes into merges.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openrla/rlaclient/internal/metrics"
)

// defaultTimeout bounds any single exchange with the service. Polling
// resilience comes from the next tick, not from slow calls hanging around.
const defaultTimeout = 30 * time.Second

// Client holds the connection to the audit service. Safe for concurrent
// use; the session token is the only mutable field.
type Client struct {
	base *url.URL
	http *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken seeds the session token, e.g. one restored from disk.
func WithToken(tok string) Option {
	return func(c *Client) { c.token = tok }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		base: u,
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetToken installs the session token carried on subsequent calls.
func (c *Client) SetToken(tok string) {
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// endpoint joins a path (optionally carrying a query string) onto the
// base URL.
func (c *Client) endpoint(path string) string {
	u := *c.base
	if i := strings.IndexByte(path, '?'); i >= 0 {
		u.RawQuery = path[i+1:]
		path = path[:i]
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

// do performs one exchange and decodes a 2xx body into out (when out is
// non-nil). Non-2xx responses become a *CallError wrapping ErrRequest or
// ErrNotAuthorized; transport errors wrap ErrNetwork.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return &CallError{Endpoint: path, cause: ErrNetwork, detail: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.GatewayCalls.WithLabelValues(path, "network_fail").Inc()
		return &CallError{Endpoint: path, cause: ErrNetwork, detail: err.Error()}
	}
	defer resp.Body.Close()

	received, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<20))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		metrics.GatewayCalls.WithLabelValues(path, "not_authorized").Inc()
		return &CallError{Endpoint: path, Status: resp.StatusCode, Body: received, cause: ErrNotAuthorized}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.GatewayCalls.WithLabelValues(path, "fail").Inc()
		return &CallError{Endpoint: path, Status: resp.StatusCode, Body: received, cause: ErrRequest}
	}

	metrics.GatewayCalls.WithLabelValues(path, "ok").Inc()

	if out != nil && len(received) > 0 {
		if err := json.Unmarshal(received, out); err != nil {
			return &CallError{Endpoint: path, Status: resp.StatusCode, Body: received, cause: ErrRequest,
				detail: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}

// get issues a GET and decodes into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// post issues a POST with a JSON body and decodes into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &CallError{Endpoint: path, cause: ErrValidation, detail: fmt.Sprintf("encode body: %v", err)}
		}
		r = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, r, "application/json", out)
}

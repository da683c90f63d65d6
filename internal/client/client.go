// Package client provides an HTTP client for the TalkToText backend.
//
// API methods never return Go errors: every transport, status and decode
// failure is folded into Response.Error so callers check a single field.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/talktotext/talktotext/internal/metrics"
	"github.com/talktotext/talktotext/internal/storage"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// DefaultTimeout bounds a single request. Uploads of long recordings can take a while.
const DefaultTimeout = 5 * time.Minute

// Response is the result of an API call: either Data or Error is meaningful.
type Response[T any] struct {
	Data  T
	Error string
}

// OK reports whether the call succeeded.
func (r Response[T]) OK() bool {
	return r.Error == ""
}

func failed[T any](format string, args ...any) Response[T] {
	return Response[T]{Error: fmt.Sprintf(format, args...)}
}

// Client talks to the TalkToText REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      storage.Store
	logger     *slog.Logger
	metrics    *metrics.Collector
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// still wrapped with request logging.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics records per-operation request timings into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for baseURL. The bearer token is read from and
// written to store. If baseURL is empty, DefaultBaseURL is used.
func New(baseURL string, store storage.Store, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := &http.Client{}
	if c.httpClient != nil {
		copied := *c.httpClient
		hc = &copied
	}
	if hc.Timeout == 0 {
		hc.Timeout = c.timeout
	}
	hc.Transport = newLoggingTransport(hc.Transport, c.logger, c.metrics)
	c.httpClient = hc

	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the persisted bearer token, or "" when anonymous.
func (c *Client) Token() string {
	tok, _ := c.store.Get(storage.TokenKey)
	return tok
}

// SetToken persists token. An empty token clears it.
func (c *Client) SetToken(token string) error {
	if token == "" {
		return c.store.Clear(storage.TokenKey)
	}
	return c.store.Set(storage.TokenKey, token)
}

// errorBody is the error payload shape the backend uses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Detail  any    `json:"detail"`
}

// errorMessage extracts the most specific message from an error response.
func errorMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Message != "":
			return eb.Message
		case eb.Error != "":
			return eb.Error
		}
		if s, ok := eb.Detail.(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// newRequest builds a request with the bearer token attached when present.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

// send executes req and decodes a JSON response into out.
func send[T any](c *Client, req *http.Request, out *T) Response[T] {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failed[T]("network error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed[T]("read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed[T]("%s", errorMessage(resp.StatusCode, body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return failed[T]("unmarshal response: %v", err)
	}
	return Response[T]{Data: *out}
}

// Do sends a JSON request to endpoint and decodes the JSON response.
// payload may be nil for requests without a body.
func Do[T any](ctx context.Context, c *Client, method, endpoint string, payload any) Response[T] {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return failed[T]("marshal request: %v", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return failed[T]("create request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var out T
	return send(c, req, &out)
}

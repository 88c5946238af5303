// Package aiclient talks to the notes backend's AI endpoints. Every call returns
// either a decoded response, whose Success flag still has to be checked, or a
// normalized *Error for transport-level failures.
package aiclient

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

	"github.com/google/uuid"

	"github.com/comigor/notesai/internal/logger"
)

const (
	// DefaultTimeout tolerates slow inference.
	DefaultTimeout = 60 * time.Second

	// TraceHeader carries a per-request id the backend can log.
	TraceHeader = "X-Trace-Id"

	defaultUserAgent = "notesai-go"
)

// Config is the explicit client configuration.
type Config struct {
	BaseURL string
	// Timeout bounds request/response calls. Streamed answers are bounded only by ctx.
	Timeout        time.Duration
	UserAgent      string
	StreamReadSize int
}

// Client is safe for concurrent use. It keeps no conversation state: session
// ids are threaded through requests by the caller.
type Client struct {
	baseURL        *url.URL
	userAgent      string
	streamReadSize int

	client       *http.Client
	streamClient *http.Client

	logger *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is reused for
// streamed requests, without the overall timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
		c.streamClient = &http.Client{
			Transport:     hc.Transport,
			CheckRedirect: hc.CheckRedirect,
			Jar:           hc.Jar,
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client for cfg.BaseURL.
func New(cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("error parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	c := &Client{
		baseURL:        u,
		userAgent:      ua,
		streamReadSize: cfg.StreamReadSize,
		client:         &http.Client{Timeout: timeout},
		streamClient:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.L
	}
	c.logger = c.logger.With(slog.String("module", "aiclient"))

	return c, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any, traceID string) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request: %w", err)
		}
		rd = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rd)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(TraceHeader, traceID)

	return req, nil
}

// do sends one JSON request and decodes a 2xx body into out (when non-nil).
// Every failure comes back as *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	traceID := uuid.NewString()

	req, err := c.newRequest(ctx, method, path, body, traceID)
	if err != nil {
		return c.fail(method, path, otherError(traceID, err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.fail(method, path, networkError(traceID, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(method, path, statusError(traceID, resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(method, path, otherError(traceID, fmt.Errorf("error decoding response: %w", err)))
	}
	return nil
}

func (c *Client) fail(method, path string, e *Error) *Error {
	c.logger.Error("AI request failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", e.StatusCode),
		slog.String("traceID", e.TraceID),
		slog.String("err", fmt.Sprint(e.Err)),
	)
	return e
}

// Package upstream holds HTTP clients for the third-party APIs the report
// engine consults. Every request is a single attempt with its own timeout and
// emits exactly one usage event.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"solana-holder-lab/internal/cache"
	"solana-holder-lab/internal/domain"
	"solana-holder-lab/internal/telemetry"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 16 << 20

// HTTPError is returned for non-200 responses.
type HTTPError struct {
	Service    string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Service, e.Endpoint, e.StatusCode, body)
}

// IsNotFound reports whether err is an HTTP 404 from any upstream.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// Client is the shared GET-JSON transport used by every API client.
type Client struct {
	service  string
	baseURL  string
	http     *http.Client
	timeout  time.Duration
	headers  http.Header
	recorder telemetry.Recorder
	tracer   trace.Tracer
	cache    cache.Cache
	cacheTTL time.Duration
	credits  map[string]int
	log      zerolog.Logger
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.headers.Set(key, value)
		}
	}
}

// WithRecorder sets the usage telemetry sink.
func WithRecorder(r telemetry.Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithCache serves repeated GETs from cache for ttl.
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		c.cacheTTL = ttl
	}
}

// WithCredits sets provider credits charged per logical endpoint.
func WithCredits(credits map[string]int) Option {
	return func(c *Client) {
		for k, v := range credits {
			c.credits[k] = v
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for service rooted at baseURL.
func NewClient(service, baseURL string, defaultTimeout time.Duration, opts ...Option) *Client {
	c := &Client{
		service:  service,
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		timeout:  defaultTimeout,
		headers:  make(http.Header),
		recorder: telemetry.Nop{},
		tracer:   noop.NewTracerProvider().Tracer(""),
		credits:  make(map[string]int),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name used in telemetry.
func (c *Client) Service() string {
	return c.service
}

// getJSON performs one GET of baseURL+path and decodes the body into out.
// endpoint is the logical name used for telemetry and credits.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out interface{}) (err error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, c.service+"."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", reqURL)))
	defer func() {
		if err != nil && !IsNotFound(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now()
	event := domain.UsageEvent{Service: c.service, Endpoint: endpoint}

	if body, ok := c.cached(ctx, reqURL); ok {
		event.Cached = true
		event.HTTPStatus = http.StatusOK
		err = decode(body, out)
		c.emit(ctx, event, start, err)
		return err
	}

	body, status, err := c.do(ctx, endpoint, reqURL)
	event.HTTPStatus = status
	event.Credits = c.credits[endpoint]
	if err == nil {
		err = decode(body, out)
		if err == nil {
			c.store(ctx, reqURL, body)
		}
	}
	c.emit(ctx, event, start, err)
	return err
}

func (c *Client) do(ctx context.Context, endpoint, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", c.service, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s %s: read body: %w", c.service, endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, &HTTPError{
			Service:    c.service,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, resp.StatusCode, nil
}

func decode(body []byte, out interface{}) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("service", c.service).Msg("cache read failed")
		return nil, false
	}
	return body, ok
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
		c.log.Warn().Err(err).Str("service", c.service).Msg("cache write failed")
	}
}

func (c *Client) emit(ctx context.Context, event domain.UsageEvent, start time.Time, err error) {
	event.LatencyMs = time.Since(start).Milliseconds()
	event.Status = telemetry.StatusFor(ctx, event.HTTPStatus, err)
	if err != nil {
		event.Metadata = map[string]string{"error": truncate(err.Error(), 256)}
	}
	telemetry.Emit(ctx, c.recorder, event)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

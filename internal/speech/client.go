package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/ohbot/internal/observe"
	"github.com/MrWong99/ohbot/internal/resilience"
)

// DefaultTimeout bounds each synthesis request.
const DefaultTimeout = 10 * time.Second

// maxClipBytes caps the response body read from the synthesis service.
const maxClipBytes = 16 << 20

// Fetcher retrieves an encoded clip for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// StatusError is returned by [Client.Fetch] when the service answers with a
// status other than 200.
type StatusError struct {
	Host string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speech: %s answered %d %s", e.Host, e.Code, http.StatusText(e.Code))
}

// Compile-time interface assertion.
var _ Fetcher = (*Client)(nil)

// Client fetches clips from one or more synthesis hosts. Each host sits
// behind its own circuit breaker; hosts are tried in order.
type Client struct {
	hc      *http.Client
	hosts   *resilience.FallbackGroup[string]
	timeout time.Duration
	metrics *observe.Metrics
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the per-host request timeout. Default: [DefaultTimeout].
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithFallbackHosts adds mirrors tried after the primary host.
func WithFallbackHosts(hosts ...string) ClientOption {
	return func(c *Client) {
		for _, h := range hosts {
			h = strings.TrimRight(h, "/")
			c.hosts.AddFallback(h, h)
		}
	}
}

// WithClientMetrics records fetch latency to m.
func WithClientMetrics(m *observe.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient returns a client for primary. breaker configures the circuit
// breaker placed in front of every host.
func NewClient(primary string, breaker resilience.CircuitBreakerConfig, opts ...ClientOption) *Client {
	primary = strings.TrimRight(primary, "/")
	c := &Client{
		hc:      &http.Client{},
		hosts:   resilience.NewFallbackGroup(primary, primary, resilience.FallbackConfig{CircuitBreaker: breaker}),
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// HostStates returns the circuit breaker state of every host, keyed by
// host URL.
func (c *Client) HostStates() map[string]string {
	states := c.hosts.States()
	out := make(map[string]string, len(states))
	for host, s := range states {
		out[host] = s.String()
	}
	return out
}

// Available reports whether any host's breaker is accepting requests.
func (c *Client) Available() bool {
	return c.hosts.Available()
}

// Fetch GETs req.Path from the first healthy host and returns the body.
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	ctx, span := observe.StartSpan(ctx, "speech.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("speech.locale", req.Locale),
			attribute.String("speech.gender", string(req.Gender)),
		),
	)
	defer span.End()

	start := time.Now()
	body, err := resilience.ExecuteWithResult(ctx, c.hosts, func(ctx context.Context, host string) ([]byte, error) {
		return c.get(ctx, host, req.Path)
	})
	if c.metrics != nil {
		c.metrics.FetchDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("speech.bytes", len(body)))
	return body, nil
}

func (c *Client) get(ctx context.Context, host, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, host+path, nil)
	if err != nil {
		return nil, fmt.Errorf("speech: build request: %w", err)
	}
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("speech: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Host: host, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxClipBytes))
	if err != nil {
		return nil, fmt.Errorf("speech: read body: %w", err)
	}
	return body, nil
}

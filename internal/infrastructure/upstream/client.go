// Package upstream is the outbound HTTP client shared by the tool integrations.
// Each remote host gets its own circuit breaker and politeness rate limit, and
// requests rotate through a pool of browser user agents.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxBodySize caps how much of an upstream response is read.
const MaxBodySize = 10 << 20

// DefaultUserAgents is used when no user agents are configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36 Edg/126.0.0.0",
}

// ErrTransport wraps failures to reach the upstream at all: DNS, connect, timeout.
var ErrTransport = errors.New("upstream: transport error")

// Config tunes the client.
type Config struct {
	Timeout      time.Duration
	RPS          float64 // per host
	Burst        int
	UserAgents   []string
	FailureRatio float64 // breaker trips at this ratio of failed requests
	MinRequests  uint32  // requests needed in the interval before the breaker may trip
	OpenTimeout  time.Duration
}

// ConfigFrom builds a client Config from the tools configuration.
func ConfigFrom(tc config.ToolsConfig) Config {
	return Config{
		Timeout:      tc.UpstreamTimeout,
		RPS:          tc.UpstreamRPS,
		Burst:        tc.UpstreamBurst,
		UserAgents:   tc.UserAgents,
		FailureRatio: tc.BreakerThreshold,
	}
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RPS <= 0 {
		c.RPS = 5
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	if len(c.UserAgents) == 0 {
		c.UserAgents = DefaultUserAgents
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		c.FailureRatio = 0.6
	}
	if c.MinRequests == 0 {
		c.MinRequests = 10
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DecodeJSON unmarshals the body into out.
func (r *Response) DecodeJSON(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

// serverError marks 5xx responses as breaker failures while still handing the
// response to the caller.
type serverError struct {
	resp *Response
}

func (e *serverError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.resp.StatusCode)
}

type hostGuard struct {
	breaker *gobreaker.CircuitBreaker[*Response]
	limiter *rate.Limiter
}

// Client performs guarded outbound requests. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	cfg     Config
	logger  *zap.Logger
	metrics *telemetry.Metrics

	mu     sync.Mutex
	hosts  map[string]*hostGuard
	uaNext atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, e.g. in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records request outcomes and breaker states.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client.
func New(cfg Config, l *zap.Logger, opts ...Option) *Client {
	cfg.applyDefaults()
	if l == nil {
		l = zap.NewNop()
	}
	c := &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: l.Named("upstream"),
		hosts:  make(map[string]*hostGuard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserAgent returns the next user agent of the rotation.
func (c *Client) UserAgent() string {
	n := c.uaNext.Add(1) - 1
	return c.cfg.UserAgents[n%uint64(len(c.cfg.UserAgents))]
}

func (c *Client) guard(host string) *hostGuard {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g, ok := c.hosts[host]; ok {
		return g
	}

	ratio := c.cfg.FailureRatio
	minRequests := c.cfg.MinRequests
	g := &hostGuard{
		limiter: rate.NewLimiter(rate.Limit(c.cfg.RPS), c.cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
			Name:        host,
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     c.cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < minRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
			},
			IsSuccessful: func(err error) bool {
				// Client-side cancellation is not counted against the host.
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("Circuit breaker state changed",
					zap.String("host", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
				c.metrics.SetBreakerState(name, stateValue(to))
			},
		}),
	}
	c.metrics.SetBreakerState(host, 0)
	c.hosts[host] = g
	return g
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Do sends req through the host's limiter and breaker and reads the whole body.
// Any status is returned as a Response; only transport failures and an open
// breaker produce errors. An open breaker yields shared.ErrUpstreamUnavailable.
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	host := req.URL.Hostname()
	g := c.guard(host)

	ctx, span := telemetry.StartClientSpan(ctx, "HTTP "+req.Method+" "+host,
		attribute.String(telemetry.SpanAttrUpstream, host),
	)
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	if err = g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent())
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, execErr := g.breaker.Execute(func() (*Response, error) {
		return c.roundTrip(req)
	})

	var se *serverError
	switch {
	case execErr == nil:
		c.metrics.ObserveUpstream(host, "success")
	case errors.As(execErr, &se):
		c.metrics.ObserveUpstream(host, "server_error")
		resp = se.resp
	case errors.Is(execErr, gobreaker.ErrOpenState), errors.Is(execErr, gobreaker.ErrTooManyRequests):
		c.metrics.ObserveUpstream(host, "rejected")
		logger.L(ctx).Warn("Upstream request rejected by circuit breaker", zap.String("host", host))
		err = shared.ErrUpstreamUnavailable
		return nil, err
	default:
		c.metrics.ObserveUpstream(host, "error")
		logger.L(ctx).Warn("Upstream request failed",
			zap.String("host", host),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(execErr),
		)
		err = execErr
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) roundTrip(req *http.Request) (*Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if resp.StatusCode >= 500 {
		return nil, &serverError{resp: out}
	}
	return out, nil
}

// Get issues a GET with optional query parameters and headers.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values, header http.Header) (*Response, error) {
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	copyHeader(req.Header, header)
	return c.Do(ctx, req)
}

// PostForm issues a form-encoded POST.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.Do(ctx, req)
}

// PostJSON issues a POST with body encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body any, header http.Header) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", "application/json")
	return c.Do(ctx, req)
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

// ClientError converts a request error into the error shown to API clients.
// Domain errors such as an open breaker pass through; anything else becomes fallback.
func ClientError(err error, fallback *shared.DomainError) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de
	}
	return fallback
}

package telemetry

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "everytoolsapi"

// Metrics holds the Prometheus collectors scraped from /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	HTTPInFlight      prometheus.Gauge
	ToolCalls         *prometheus.CounterVec
	ToolDuration      *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
	RateLimitRejected *prometheus.CounterVec
	UpstreamRequests  *prometheus.CounterVec
	BreakerState      *prometheus.GaugeVec
	RequestLogErrors  prometheus.Counter
}

// NewMetrics creates a registry with Go runtime and process collectors plus the
// service collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: DurationBuckets,
		}, []string{"method", "route"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "http", Name: "requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "tool", Name: "calls_total",
			Help: "Tool invocations by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace, Subsystem: "tool", Name: "duration_seconds",
			Help:    "Time spent inside the tool, excluding cache hits.",
			Buckets: DurationBuckets,
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "cache", Name: "lookups_total",
			Help: "Response cache lookups by endpoint and result (hit, miss, error).",
		}, []string{"endpoint", "result"}),
		RateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "ratelimit", Name: "rejected_total",
			Help: "Requests rejected by the rate limiter.",
		}, []string{"endpoint", "limit"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "upstream", Name: "requests_total",
			Help: "Outbound requests by host and result.",
		}, []string{"host", "result"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace, Subsystem: "upstream", Name: "breaker_state",
			Help: "Circuit breaker state per host: 0 closed, 1 half-open, 2 open.",
		}, []string{"host"}),
		RequestLogErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace, Subsystem: "request_log", Name: "write_errors_total",
			Help: "Request log writes that failed.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequests, m.HTTPDuration, m.HTTPInFlight,
		m.ToolCalls, m.ToolDuration,
		m.CacheLookups, m.RateLimitRejected,
		m.UpstreamRequests, m.BreakerState,
		m.RequestLogErrors,
	)
	return m
}

// RegisterDB exposes connection pool statistics of db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	if m == nil || db == nil {
		return nil
	}
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveTool records one tool invocation.
func (m *Metrics) ObserveTool(endpoint string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ToolCalls.WithLabelValues(endpoint, outcome).Inc()
	m.ToolDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveCache records a cache lookup result: hit, miss or error.
func (m *Metrics) ObserveCache(endpoint, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(endpoint, result).Inc()
}

// ObserveRateLimited records a rejected request.
func (m *Metrics) ObserveRateLimited(endpoint, limit string) {
	if m == nil {
		return
	}
	m.RateLimitRejected.WithLabelValues(endpoint, limit).Inc()
}

// ObserveUpstream records an outbound request result.
func (m *Metrics) ObserveUpstream(host, result string) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(host, result).Inc()
}

// SetBreakerState publishes a breaker state as 0 closed, 1 half-open, 2 open.
func (m *Metrics) SetBreakerState(host string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(host).Set(float64(state))
}

// ObserveRequestLogError counts a failed request log write.
func (m *Metrics) ObserveRequestLogError() {
	if m == nil {
		return
	}
	m.RequestLogErrors.Inc()
}

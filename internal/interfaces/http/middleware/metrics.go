package middleware

import (
	"strconv"
	"time"

	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetricsConfig holds configuration for HTTP metrics middleware.
type HTTPMetricsConfig struct {
	// Metrics receives the Prometheus series scraped from /metrics. May be nil.
	Metrics *telemetry.Metrics
	// Meter pushes the same measurements over OTLP. May be nil.
	Meter metric.Meter
	// SkipPaths are not measured, e.g. /metrics itself.
	SkipPaths []string
}

// otelHTTPMetrics holds the OTLP instruments.
type otelHTTPMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	activeRequests  *telemetry.UpDownCounter
}

func newOtelHTTPMetrics(meter metric.Meter) (*otelHTTPMetrics, error) {
	requestTotal, err := telemetry.NewCounter(meter,
		"http_server_request_total", "Total number of HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	requestDuration, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_server_request_duration_seconds",
		Description: "HTTP request latency distribution in seconds",
		Unit:        "s",
		Buckets:     telemetry.DurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	activeRequests, err := telemetry.NewUpDownCounter(meter,
		"http_server_active_requests", "Number of currently active HTTP requests", "{request}")
	if err != nil {
		return nil, err
	}
	return &otelHTTPMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics records request count, latency and in-flight requests by
// method and route pattern.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	var otelMetrics *otelHTTPMetrics
	if cfg.Meter != nil {
		// An instrument error leaves only the Prometheus series
		otelMetrics, _ = newOtelHTTPMetrics(cfg.Meter)
	}
	if cfg.Metrics == nil && otelMetrics == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		start := time.Now()
		if cfg.Metrics != nil {
			cfg.Metrics.HTTPInFlight.Inc()
		}
		if otelMetrics != nil {
			otelMetrics.activeRequests.Add(ctx, 1)
		}

		c.Next()

		duration := time.Since(start)
		method := c.Request.Method
		route := getRoutePattern(c)
		status := c.Writer.Status()

		if cfg.Metrics != nil {
			cfg.Metrics.HTTPInFlight.Dec()
			cfg.Metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			cfg.Metrics.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
		}
		if otelMetrics != nil {
			otelMetrics.activeRequests.Add(ctx, -1)
			base := []attribute.KeyValue{
				telemetry.AttrHTTPMethod.String(method),
				telemetry.AttrHTTPRoute.String(route),
			}
			otelMetrics.requestTotal.Inc(ctx, append(base, telemetry.AttrHTTPStatus.Int(status))...)
			otelMetrics.requestDuration.RecordDuration(ctx, duration, base...)
		}
	}
}

// getRoutePattern returns the route pattern (e.g. "/api/:version/parser/url")
// instead of the actual path to keep label cardinality bounded.
func getRoutePattern(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return "unknown"
	}
	return route
}

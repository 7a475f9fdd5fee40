package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/everytoolsapi/backend/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(
		config.AppConfig{Env: "staging"},
		config.TelemetryConfig{Enabled: false, LogsEnabled: true, ServiceName: "svc", SamplingRatio: 0.5},
	)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "svc", cfg.ServiceName)
	assert.False(t, cfg.LogsEnabled, "log export requires telemetry to be enabled")
}

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := Config{ServiceName: "test"}

	t.Run("tracer", func(t *testing.T) {
		tp, err := NewTracerProvider(ctx, cfg, logger)
		require.NoError(t, err)
		assert.False(t, tp.IsEnabled())
		tp.EnableSpanProfiles()
		assert.False(t, tp.IsSpanProfilesEnabled())
		assert.NotNil(t, tp.Tracer("x"))
		assert.NoError(t, tp.Shutdown(ctx))
	})

	t.Run("meter", func(t *testing.T) {
		mp, err := NewMeterProvider(ctx, cfg, logger)
		require.NoError(t, err)
		assert.False(t, mp.IsEnabled())

		counter, err := NewCounter(mp.Meter("test"), "calls", "calls", "1")
		require.NoError(t, err)
		counter.Inc(ctx)
		assert.NoError(t, mp.Shutdown(ctx))
	})

	t.Run("logs", func(t *testing.T) {
		lp, err := NewLoggerProvider(ctx, cfg, logger)
		require.NoError(t, err)
		assert.False(t, lp.IsEnabled())
		assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
		assert.NoError(t, lp.Shutdown(ctx))
	})

	t.Run("profiler", func(t *testing.T) {
		p, err := NewProfiler(config.ProfilingConfig{}, "test", "test", logger)
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("profiler requires a server address", func(t *testing.T) {
		_, err := NewProfiler(config.ProfilingConfig{Enabled: true}, "test", "test", logger)
		assert.Error(t, err)
	})
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	l := zap.New(core).With(zap.String("k", "v"))

	l.Info("dropped")
	l.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "v", logs.All()[0].ContextMap()["k"])
}

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestSpanHelpers(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartClientSpan(context.Background(), "ffprobe")
	AddEvent(span, "started", "attempt", 1, "url", "https://example.com")
	EndSpan(span, errors.New("exit status 1"))

	_, ok := StartSpan(context.Background(), "parse")
	EndSpan(ok, nil)

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "exit status 1", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 2) // the recorded error is an event too
	assert.Equal(t, codes.Ok, ended[1].Status().Code)
}

func TestWithEndpointLabels(t *testing.T) {
	called := 0
	WithEndpointLabels(context.Background(), "parser/url", "GET", func(context.Context) { called++ })
	WithEndpointLabels(context.Background(), "", "GET", func(context.Context) { called++ })
	assert.Equal(t, 2, called)
}

func TestRegisterDBTracing(t *testing.T) {
	rec := withRecorder(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, RegisterDBTracing(db, time.Nanosecond, zaptest.NewLogger(t)))

	type sample struct {
		ID   int64
		Name string
	}
	require.NoError(t, db.AutoMigrate(&sample{}))
	require.NoError(t, db.WithContext(context.Background()).Create(&sample{Name: "a"}).Error)

	var found bool
	for _, s := range rec.Ended() {
		for _, a := range s.Attributes() {
			if a.Key == "db.slow_query" && a.Value.AsBool() {
				found = true
			}
		}
	}
	assert.True(t, found, "statements slower than the threshold are flagged")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.ObserveTool("parser/url", 10*time.Millisecond, nil)
	m.ObserveTool("parser/url", time.Millisecond, errors.New("boom"))
	m.ObserveCache("parser/url", "hit")
	m.ObserveRateLimited("parser/url", "10/second")
	m.ObserveUpstream("api.github.com", "success")
	m.SetBreakerState("api.github.com", 2)
	m.ObserveRequestLogError()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("parser/url", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("parser/url", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("parser/url", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("api.github.com")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestLogErrors))

	t.Run("nil metrics are a no-op", func(t *testing.T) {
		var nilMetrics *Metrics
		assert.NotPanics(t, func() {
			nilMetrics.ObserveTool("x", 0, nil)
			nilMetrics.ObserveCache("x", "miss")
			nilMetrics.ObserveRateLimited("x", "1/second")
			nilMetrics.ObserveUpstream("h", "error")
			nilMetrics.SetBreakerState("h", 0)
			nilMetrics.ObserveRequestLogError()
			assert.NoError(t, nilMetrics.RegisterDB(nil, "db"))
		})
	})
}

package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	endpointKey  contextKey = "endpoint"
)

// WithContext stores a logger in the context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the stored logger or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithEndpoint records the catalogue path ("/parser/email") serving the request
func WithEndpoint(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, endpointKey, path)
}

func GetEndpoint(ctx context.Context) string {
	p, _ := ctx.Value(endpointKey).(string)
	return p
}

// GetTraceID returns the active span's trace id, or "" without a valid span
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func GetSpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// L returns the context logger enriched with request, endpoint and trace fields.
func L(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	l := FromContext(ctx)

	fields := make([]zap.Field, 0, 4)
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if ep := GetEndpoint(ctx); ep != "" {
		fields = append(fields, zap.String("endpoint", ep))
	}
	if tid := GetTraceID(ctx); tid != "" {
		fields = append(fields, zap.String("trace_id", tid), zap.String("span_id", GetSpanID(ctx)))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

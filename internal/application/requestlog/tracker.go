package requestlog

import (
	"context"
	"net/url"

	"github.com/everytoolsapi/backend/internal/domain/requestlog"
	"github.com/everytoolsapi/backend/internal/infrastructure/logger"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Tracker records the lifecycle of API requests.
// Writes are best effort: failures are logged and counted but never returned,
// so auditing can not change the response a client receives.
type Tracker struct {
	repo    requestlog.Repository
	metrics *telemetry.Metrics
	logger  *zap.Logger
}

// NewTracker creates a new Tracker; a nil repo disables tracking
func NewTracker(repo requestlog.Repository, metrics *telemetry.Metrics, l *zap.Logger) *Tracker {
	if l == nil {
		l = zap.NewNop()
	}
	return &Tracker{repo: repo, metrics: metrics, logger: l.Named("requestlog")}
}

// Enabled reports whether requests are persisted
func (t *Tracker) Enabled() bool {
	return t != nil && t.repo != nil
}

// Start stores the request with its "started" status and returns its id.
// The id is 0 when nothing was stored.
func (t *Tracker) Start(ctx context.Context, route string, query url.Values, originIP string) int64 {
	if !t.Enabled() {
		return 0
	}
	req, err := requestlog.NewRequest(route, query, originIP)
	if err != nil {
		t.fail(ctx, "build", err)
		return 0
	}
	if err := t.repo.Create(context.WithoutCancel(ctx), req); err != nil {
		t.fail(ctx, "create", err, zap.String("route", route))
		return 0
	}
	return req.ID
}

// Succeed marks the request as successful
func (t *Tracker) Succeed(ctx context.Context, requestID int64) {
	if !t.Enabled() || requestID == 0 {
		return
	}
	if err := t.repo.MarkSuccess(context.WithoutCancel(ctx), requestID); err != nil {
		t.fail(ctx, "mark_success", err, zap.Int64("api_request_id", requestID))
	}
}

// Fail stores the client-visible error message and marks the request as failed
func (t *Tracker) Fail(ctx context.Context, requestID int64, message string) {
	if !t.Enabled() || requestID == 0 {
		return
	}
	if err := t.repo.MarkException(context.WithoutCancel(ctx), requestID, message); err != nil {
		t.fail(ctx, "mark_exception", err, zap.Int64("api_request_id", requestID))
	}
}

func (t *Tracker) fail(ctx context.Context, op string, err error, fields ...zap.Field) {
	t.metrics.ObserveRequestLogError()
	t.logger.Error("Request log write failed",
		append(fields,
			zap.String("operation", op),
			zap.String("request_id", logger.GetRequestID(ctx)),
			zap.Error(err),
		)...,
	)
}

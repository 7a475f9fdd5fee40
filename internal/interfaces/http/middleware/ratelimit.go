package middleware

import (
	"strconv"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/everytoolsapi/backend/internal/domain/shared"
	"github.com/everytoolsapi/backend/internal/infrastructure/ratelimit"
	"github.com/everytoolsapi/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitConfig configures the limits applied to one route
type RateLimitConfig struct {
	Limiter ratelimit.Limiter
	Limits  []endpoint.Limit
	// Scope separates counters of different routes, e.g. "tools/ip"
	Scope    string
	Metrics  *telemetry.Metrics
	Logger   *zap.Logger
	OnDenied ErrorRenderer
	// Now is overridable in tests
	Now func() time.Time
}

// RateLimit counts each request against every configured window, keyed by
// client IP and scope. Limiter failures let the request through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil || len(cfg.Limits) == 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	onDenied := rendererOrDefault(cfg.OnDenied)

	return func(c *gin.Context) {
		key := c.ClientIP() + ":" + cfg.Scope

		res, err := cfg.Limiter.Allow(c.Request.Context(), key, cfg.Limits)
		if err != nil {
			cfg.Logger.Warn("rate limiter unavailable, allowing request",
				zap.String("scope", cfg.Scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set(HeaderRateLimitLimit, strconv.FormatInt(res.Limit.Count, 10))
		h.Set(HeaderRateLimitRemaining, strconv.FormatInt(res.Remaining, 10))
		h.Set(HeaderRateLimitReset, strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retry := res.RetryAfter(cfg.Now())
			h.Set(HeaderRetryAfter, strconv.Itoa(int(retry/time.Second)))
			cfg.Metrics.ObserveRateLimited(cfg.Scope, res.Limit.String())
			cfg.Logger.Debug("rate limit exceeded",
				zap.String("scope", cfg.Scope),
				zap.String("client_ip", c.ClientIP()),
				zap.String("limit", res.Limit.String()),
			)
			onDenied(c, shared.ErrRateLimited)
			return
		}
		c.Next()
	}
}

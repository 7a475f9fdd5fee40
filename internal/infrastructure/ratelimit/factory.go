package ratelimit

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// New returns a Redis limiter for the redis backend when client is non-nil,
// otherwise an in-memory limiter.
func New(backend string, client *redis.Client, keyPrefix string, logger *zap.Logger) (Limiter, error) {
	switch backend {
	case "memory":
		logger.Info("using in-memory rate limiter")
		return NewMemoryLimiter(), nil
	case "redis", "":
		if client == nil {
			logger.Warn("Redis unavailable, falling back to in-memory rate limiter. " +
				"Limits are enforced per instance.")
			return NewMemoryLimiter(), nil
		}
		logger.Info("using Redis rate limiter")
		return NewRedisLimiter(client, keyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", backend)
	}
}

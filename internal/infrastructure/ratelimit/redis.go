package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps one INCR counter per key and window. Each counter
// expires with its window.
type RedisLimiter struct {
	client    redis.UniversalClient
	keyPrefix string
	now       func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, keyPrefix string) *RedisLimiter {
	return &RedisLimiter{client: client, keyPrefix: keyPrefix, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limits []endpoint.Limit) (Result, error) {
	if len(limits) == 0 {
		return Result{Allowed: true}, nil
	}
	now := l.now()

	pipe := l.client.TxPipeline()
	incrs := make([]*redis.IntCmd, len(limits))
	for i, lim := range limits {
		start := windowStart(now, lim.Window)
		k := counterKey(l.keyPrefix, key, lim, start)
		incrs[i] = pipe.Incr(ctx, k)
		pipe.ExpireAt(ctx, k, start.Add(lim.Window).Add(time.Second))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	counts := make([]int64, len(limits))
	for i, cmd := range incrs {
		counts[i] = cmd.Val()
	}
	return evaluate(now, limits, counts), nil
}

// Close is a no-op; the shared client is closed by its owner
func (l *RedisLimiter) Close() error {
	return nil
}

var _ Limiter = (*RedisLimiter)(nil)

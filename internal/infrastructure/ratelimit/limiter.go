// Package ratelimit enforces fixed-window request limits such as
// "10/second;10000/day". Counters live in Redis so every instance shares
// them, or in process memory when Redis is unavailable.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
)

// Result is the outcome of a rate limit check
type Result struct {
	Allowed bool
	// Limit is the window that denied the request, or the one with the
	// fewest remaining hits when allowed
	Limit     endpoint.Limit
	Remaining int64
	ResetAt   time.Time
}

// RetryAfter returns how long the client should wait, rounded up to seconds
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return time.Second
	}
	return d.Truncate(time.Second) + time.Second
}

// Limiter counts a hit against every limit for key
type Limiter interface {
	Allow(ctx context.Context, key string, limits []endpoint.Limit) (Result, error)
	Close() error
}

// windowStart aligns now to the start of its fixed window
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

func counterKey(prefix, key string, l endpoint.Limit, start time.Time) string {
	return fmt.Sprintf("%s%s:%d:%d", prefix, key, int64(l.Window/time.Second), start.Unix())
}

// evaluate folds per-window counts into a Result. counts[i] is the number
// of hits recorded for limits[i] including the current one.
func evaluate(now time.Time, limits []endpoint.Limit, counts []int64) Result {
	res := Result{Allowed: true, Remaining: -1}
	for i, l := range limits {
		reset := windowStart(now, l.Window).Add(l.Window)
		if counts[i] > l.Count {
			return Result{Allowed: false, Limit: l, Remaining: 0, ResetAt: reset}
		}
		remaining := l.Count - counts[i]
		if res.Remaining < 0 || remaining < res.Remaining {
			res.Limit, res.Remaining, res.ResetAt = l, remaining, reset
		}
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res
}

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T) (*MemoryLimiter, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := newMemoryLimiter(time.Hour, clk.Now)
	t.Cleanup(func() { _ = l.Close() })
	return l, clk
}

func mustLimits(t *testing.T, spec string) []endpoint.Limit {
	t.Helper()
	limits, err := endpoint.ParseRateLimit(spec)
	require.NoError(t, err)
	return limits
}

func TestMemoryLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("denies the request after the limit", func(t *testing.T) {
		l, _ := newTestLimiter(t)
		limits := mustLimits(t, "3/second")

		for i := 0; i < 3; i++ {
			res, err := l.Allow(ctx, "ip:/parser/email", limits)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, int64(2-i), res.Remaining)
		}

		res, err := l.Allow(ctx, "ip:/parser/email", limits)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, int64(3), res.Limit.Count)
	})

	t.Run("a new window resets the counter", func(t *testing.T) {
		l, clk := newTestLimiter(t)
		limits := mustLimits(t, "1/second")

		res, _ := l.Allow(ctx, "k", limits)
		assert.True(t, res.Allowed)
		res, _ = l.Allow(ctx, "k", limits)
		assert.False(t, res.Allowed)

		clk.Advance(time.Second)
		res, _ = l.Allow(ctx, "k", limits)
		assert.True(t, res.Allowed)
	})

	t.Run("the tightest window wins", func(t *testing.T) {
		l, clk := newTestLimiter(t)
		limits := mustLimits(t, "10/second;3/minute")

		for i := 0; i < 3; i++ {
			res, _ := l.Allow(ctx, "k", limits)
			require.True(t, res.Allowed)
			clk.Advance(1100 * time.Millisecond)
		}
		res, _ := l.Allow(ctx, "k", limits)
		assert.False(t, res.Allowed)
		assert.Equal(t, time.Minute, res.Limit.Window)
	})

	t.Run("keys are independent", func(t *testing.T) {
		l, _ := newTestLimiter(t)
		limits := mustLimits(t, "1/minute")

		a, _ := l.Allow(ctx, "1.1.1.1:/tools/ip", limits)
		b, _ := l.Allow(ctx, "2.2.2.2:/tools/ip", limits)
		assert.True(t, a.Allowed)
		assert.True(t, b.Allowed)
	})

	t.Run("no limits always allows", func(t *testing.T) {
		l, _ := newTestLimiter(t)
		res, err := l.Allow(ctx, "k", nil)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Zero(t, l.Size())
	})

	t.Run("expired counters are removed", func(t *testing.T) {
		l, clk := newTestLimiter(t)
		_, _ = l.Allow(ctx, "k", mustLimits(t, "5/second;5/hour"))
		assert.Equal(t, 2, l.Size())

		clk.Advance(2 * time.Second)
		l.removeExpired()
		assert.Equal(t, 1, l.Size())
	})
}

func TestResult_RetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 2*time.Second, Result{ResetAt: now.Add(1500 * time.Millisecond)}.RetryAfter(now))
	assert.Equal(t, time.Second, Result{ResetAt: now.Add(-time.Second)}.RetryAfter(now))
}

func TestNew(t *testing.T) {
	l, err := New("redis", nil, "rl:", zap.NewNop())
	require.NoError(t, err)
	defer l.Close()
	assert.IsType(t, &MemoryLimiter{}, l)

	_, err = New("token-bucket", nil, "rl:", zap.NewNop())
	assert.Error(t, err)
}

package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/everytoolsapi/backend/internal/domain/endpoint"
)

type counter struct {
	hits      int64
	expiresAt time.Time
}

// MemoryLimiter keeps counters in process memory. Limits are enforced per
// instance only.
type MemoryLimiter struct {
	mu        sync.Mutex
	counters  map[string]*counter
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewMemoryLimiter() *MemoryLimiter {
	return newMemoryLimiter(time.Minute, time.Now)
}

func newMemoryLimiter(cleanupEvery time.Duration, now func() time.Time) *MemoryLimiter {
	l := &MemoryLimiter{
		counters: make(map[string]*counter),
		now:      now,
		stopChan: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.cleanupLoop(cleanupEvery)
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limits []endpoint.Limit) (Result, error) {
	if len(limits) == 0 {
		return Result{Allowed: true}, nil
	}
	now := l.now()
	counts := make([]int64, len(limits))

	l.mu.Lock()
	for i, lim := range limits {
		start := windowStart(now, lim.Window)
		k := counterKey("", key, lim, start)
		c, ok := l.counters[k]
		if !ok {
			c = &counter{expiresAt: start.Add(lim.Window)}
			l.counters[k] = c
		}
		c.hits++
		counts[i] = c.hits
	}
	l.mu.Unlock()

	return evaluate(now, limits, counts), nil
}

// Size returns the number of live counters
func (l *MemoryLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (l *MemoryLimiter) Close() error {
	l.closeOnce.Do(func() {
		close(l.stopChan)
		l.wg.Wait()
	})
	return nil
}

func (l *MemoryLimiter) cleanupLoop(every time.Duration) {
	defer l.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.removeExpired()
		}
	}
}

func (l *MemoryLimiter) removeExpired() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, c := range l.counters {
		if !now.Before(c.expiresAt) {
			delete(l.counters, k)
		}
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestMemoryStore(t *testing.T, max int) (*MemoryStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, err := newMemoryStore(max, time.Hour, clock.Now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, clock
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored values until they expire", func(t *testing.T) {
		s, clock := newTestMemoryStore(t, 10)
		require.NoError(t, s.Set(ctx, "k", []byte("v"), 5*time.Second))

		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), v)

		clock.Advance(5 * time.Second)
		_, ok, err = s.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, s.Len())
	})

	t.Run("copies the value", func(t *testing.T) {
		s, _ := newTestMemoryStore(t, 10)
		buf := []byte("abc")
		require.NoError(t, s.Set(ctx, "k", buf, time.Minute))
		buf[0] = 'x'

		v, _, _ := s.Get(ctx, "k")
		assert.Equal(t, "abc", string(v))
	})

	t.Run("ignores non-positive ttl", func(t *testing.T) {
		s, _ := newTestMemoryStore(t, 10)
		require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
		assert.Zero(t, s.Len())
	})

	t.Run("evicts least recently used beyond capacity", func(t *testing.T) {
		s, _ := newTestMemoryStore(t, 2)
		require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
		require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Minute))
		_, _, _ = s.Get(ctx, "a")
		require.NoError(t, s.Set(ctx, "c", []byte("3"), time.Minute))

		_, okA, _ := s.Get(ctx, "a")
		_, okB, _ := s.Get(ctx, "b")
		assert.True(t, okA)
		assert.False(t, okB)
	})

	t.Run("delete and cleanup", func(t *testing.T) {
		s, clock := newTestMemoryStore(t, 10)
		require.NoError(t, s.Set(ctx, "short", []byte("1"), time.Second))
		require.NoError(t, s.Set(ctx, "long", []byte("2"), time.Hour))
		require.NoError(t, s.Set(ctx, "gone", []byte("3"), time.Hour))
		require.NoError(t, s.Delete(ctx, "gone"))

		clock.Advance(2 * time.Second)
		s.removeExpired()
		assert.Equal(t, 1, s.Len())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		s, err := NewMemoryStore(0)
		require.NoError(t, err)
		assert.NoError(t, s.Close())
		assert.NoError(t, s.Close())
	})
}

func TestStoreFactory(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		store, err := NewStoreFactory(nil).CreateStore(BackendMemory)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("redis backend falls back without client", func(t *testing.T) {
		store, err := NewStoreFactory(nil, WithMaxEntries(5)).CreateStore(BackendRedis)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("fallback can be disabled", func(t *testing.T) {
		_, err := NewStoreFactory(nil, WithInMemoryFallback(false)).CreateStore(BackendRedis)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewStoreFactory(nil).CreateStore("memcached")
		assert.ErrorContains(t, err, "memcached")
	})
}

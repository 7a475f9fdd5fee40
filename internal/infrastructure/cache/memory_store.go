package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const defaultMaxEntries = 10000

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a bounded in-process Store. Least recently used entries are
// evicted once maxEntries is reached and a background loop drops expired ones.
// State is not shared between instances.
type MemoryStore struct {
	entries   *lru.Cache
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMemoryStore creates a store holding at most maxEntries values
func NewMemoryStore(maxEntries int) (*MemoryStore, error) {
	return newMemoryStore(maxEntries, 5*time.Minute, time.Now)
}

func newMemoryStore(maxEntries int, cleanupEvery time.Duration, now func() time.Time) (*MemoryStore, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	entries, err := lru.New(maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	s := &MemoryStore{
		entries:  entries,
		now:      now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop(cleanupEvery)
	return s, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	e := v.(memoryEntry)
	if !s.now().Before(e.expiresAt) {
		s.entries.Remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	s.entries.Add(key, memoryEntry{value: buf, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.entries.Remove(key)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *MemoryStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *MemoryStore) removeExpired() {
	now := s.now()
	for _, k := range s.entries.Keys() {
		v, ok := s.entries.Peek(k)
		if !ok {
			continue
		}
		if !now.Before(v.(memoryEntry).expiresAt) {
			s.entries.Remove(k)
		}
	}
}

var _ Store = (*MemoryStore)(nil)

package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented key/value cache with per-entry TTL
type Store interface {
	// Get returns the value and true, or nil and false on a miss
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl; a non-positive ttl is a no-op
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

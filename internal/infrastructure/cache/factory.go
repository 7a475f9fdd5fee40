package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend names accepted in configuration
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// StoreFactory creates response cache stores based on configuration
type StoreFactory struct {
	client                *redis.Client
	keyPrefix             string
	maxEntries            int
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) { f.logger = logger }
}

// WithInMemoryFallback controls whether a missing Redis client degrades to
// an in-memory store. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) { f.allowInMemoryFallback = allow }
}

func WithMaxEntries(n int) StoreFactoryOption {
	return func(f *StoreFactory) { f.maxEntries = n }
}

func WithKeyPrefix(prefix string) StoreFactoryOption {
	return func(f *StoreFactory) { f.keyPrefix = prefix }
}

// NewStoreFactory creates a factory. client may be nil when Redis is
// disabled or unreachable.
func NewStoreFactory(client *redis.Client, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		client:                client,
		keyPrefix:             "everytools:cache:",
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store for the redis backend when a client is
// available, otherwise an in-memory store.
func (f *StoreFactory) CreateStore(backend string) (Store, error) {
	switch backend {
	case BackendMemory:
		f.logger.Info("using in-memory response cache")
		return NewMemoryStore(f.maxEntries)
	case BackendRedis, "":
		if f.client != nil {
			f.logger.Info("using Redis response cache")
			return NewRedisStore(f.client, f.keyPrefix), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required for response cache but unavailable")
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory response cache. " +
			"Cached responses are not shared between instances.")
		return NewMemoryStore(f.maxEntries)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

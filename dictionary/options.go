package dictionary

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynconfig/cache"
)

// DefaultTTL is the cache ttl used when WithTTL is not given.
const DefaultTTL = time.Hour

// DefaultNamespace is the leading segment of cache keys when WithNamespace is not given.
const DefaultNamespace = "dictionary"

// Option configures a Manager.
type Option func(*Manager)

// WithCache enables caching through strategy. Without it every call reaches the repository.
func WithCache(strategy cache.Strategy) Option {
	return func(m *Manager) {
		m.cache = strategy
	}
}

// WithNamespace sets the leading segment of every cache key. An empty namespace suits a
// strategy that is already scoped to dictionaries through its own prefix.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		m.keys = cache.NewKeySerializer(namespace)
	}
}

// WithTTL sets the ttl of cached listings and trees.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithLogger sets the logger used for swallowed cache failures.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

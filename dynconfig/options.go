package dynconfig

import (
	"time"

	"go.uber.org/zap"
)

// DefaultKeyPrefix namespaces configuration entries inside a shared cache.
const DefaultKeyPrefix = "config:"

// Option configures a Manager.
type Option func(*Manager)

// WithPreload controls whether NewManager loads every item into the cache. Hosts that run
// their own startup hooks can disable it and call LoadAll later.
func WithPreload(preload bool) Option {
	return func(m *Manager) {
		m.preload = preload
	}
}

// WithKeyPrefix sets the prefix prepended to every cache key.
func WithKeyPrefix(prefix string) Option {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// WithTTL sets the ttl used for cache writes. Zero selects the strategy default.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithLogger sets the logger used for degraded reads and swallowed cache failures.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

// MemoryConfig configures the in-process memory strategy.
type MemoryConfig struct {
	// Prefix is prepended to every key. Clear only removes keys under it.
	Prefix string

	// DefaultTTL applies when a write carries no ttl. Zero means entries never expire.
	DefaultTTL time.Duration
}

// Validate checks the memory configuration.
func (c MemoryConfig) Validate() error {
	if c.DefaultTTL < 0 {
		return &ConfigError{Field: "DefaultTTL", Message: "must be non-negative"}
	}
	return nil
}

// Memory is a process-local strategy backed by ttlcache. Expired entries are evicted
// lazily when read and in bulk by Cleanup; no janitor goroutine is started.
type Memory struct {
	store  *ttlcache.Cache[string, any]
	cfg    MemoryConfig
	logger *zap.Logger
}

var _ Strategy = (*Memory)(nil)

// NewMemory creates a memory strategy.
func NewMemory(cfg MemoryConfig, opts ...Option) (*Memory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions("memory", opts)

	store := ttlcache.New[string, any](
		ttlcache.WithDisableTouchOnHit[string, any](),
	)

	return &Memory{store: store, cfg: cfg, logger: o.logger}, nil
}

func (m *Memory) key(k string) string {
	return m.cfg.Prefix + k
}

func (m *Memory) ttl(ttl time.Duration) time.Duration {
	ttl = resolveTTL(ttl, m.cfg.DefaultTTL)
	if ttl <= 0 {
		return ttlcache.NoTTL
	}
	return ttl
}

// Get returns the live value for key. An expired entry is removed and reported as a miss.
func (m *Memory) Get(_ context.Context, key string) (any, bool) {
	k := m.key(key)
	item := m.store.Get(k)
	if item == nil {
		// drop an expired leftover, if any
		m.store.Delete(k)
		return nil, false
	}
	if item.IsExpired() {
		m.store.Delete(k)
		return nil, false
	}
	return item.Value(), true
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.store.Set(m.key(key), value, m.ttl(ttl))
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.store.Delete(m.key(key))
	return nil
}

// Clear removes every key under the configured prefix, or everything without one.
func (m *Memory) Clear(_ context.Context) error {
	if m.cfg.Prefix == "" {
		m.store.DeleteAll()
		return nil
	}

	m.store.DeleteExpired()
	for _, k := range m.store.Keys() {
		if strings.HasPrefix(k, m.cfg.Prefix) {
			m.store.Delete(k)
		}
	}
	return nil
}

// Has reports whether key holds a live value.
func (m *Memory) Has(ctx context.Context, key string) bool {
	_, ok := m.Get(ctx, key)
	return ok
}

// MGet reads keys in order.
func (m *Memory) MGet(ctx context.Context, keys []string) []Result {
	out := make([]Result, len(keys))
	for i, k := range keys {
		v, ok := m.Get(ctx, k)
		out[i] = Result{Value: v, Found: ok}
	}
	return out
}

// MSet writes every entry with its own ttl.
func (m *Memory) MSet(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := m.Set(ctx, e.Key, e.Value, e.TTL); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup evicts all expired entries and returns how many were removed.
func (m *Memory) Cleanup() int {
	before := m.store.Len()
	m.store.DeleteExpired()
	removed := before - m.store.Len()
	if removed > 0 {
		m.logger.Debug("evicted expired entries", zap.Int("count", removed))
	}
	return removed
}

// Size returns the number of stored entries, including expired ones not yet evicted.
func (m *Memory) Size() int {
	return m.store.Len()
}

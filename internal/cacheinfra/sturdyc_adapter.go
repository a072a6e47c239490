package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
	"go.uber.org/zap"
)

// ShardedConfig holds the configuration for the sturdyc backed strategy.
type ShardedConfig struct {
	// Prefix is prepended to every key. Clear only removes keys under it.
	Prefix string

	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the retention ceiling for every entry. Writes may ask for a shorter ttl but
	// never a longer one. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often sturdyc checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultShardedConfig returns a ShardedConfig with sensible defaults for most use cases.
func DefaultShardedConfig() ShardedConfig {
	return ShardedConfig{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c ShardedConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// ToSturdycOptions converts the optional parts of the config to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go straight to sturdyc.New.
func (c ShardedConfig) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// shardedEntry carries its own deadline so per-write ttls shorter than the client TTL hold.
type shardedEntry struct {
	value    any
	expireAt time.Time
}

func (e shardedEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// Sharded is a capacity bounded in-process strategy backed by a sturdyc client.
type Sharded struct {
	client *sturdyc.Client[shardedEntry]
	cfg    ShardedConfig
	logger *zap.Logger
	now    func() time.Time
}

var _ Strategy = (*Sharded)(nil)

// NewSharded validates cfg and creates the sturdyc client.
func NewSharded(cfg ShardedConfig, opts ...Option) (*Sharded, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions("sharded", opts)

	client := sturdyc.New[shardedEntry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &Sharded{client: client, cfg: cfg, logger: o.logger, now: time.Now}, nil
}

func (s *Sharded) key(k string) string {
	return s.cfg.Prefix + k
}

// Get returns the live value for key.
func (s *Sharded) Get(_ context.Context, key string) (any, bool) {
	k := s.key(key)
	entry, ok := s.client.Get(k)
	if !ok {
		return nil, false
	}
	if entry.expired(s.now()) {
		s.client.Delete(k)
		return nil, false
	}
	return entry.value, true
}

// Set stores value. ttls at or above the configured TTL fall back to client retention.
func (s *Sharded) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	entry := shardedEntry{value: value}
	if ttl > 0 && ttl < s.cfg.TTL {
		entry.expireAt = s.now().Add(ttl)
	}
	s.client.Set(s.key(key), entry)
	return nil
}

// Delete removes key.
func (s *Sharded) Delete(_ context.Context, key string) error {
	s.client.Delete(s.key(key))
	return nil
}

// Clear removes every key under the prefix.
func (s *Sharded) Clear(_ context.Context) error {
	removed := 0
	for _, k := range s.client.ScanKeys() {
		if strings.HasPrefix(k, s.cfg.Prefix) {
			s.client.Delete(k)
			removed++
		}
	}
	s.logger.Debug("cleared sharded cache", zap.Int("count", removed))
	return nil
}

// Has reports whether key holds a live value.
func (s *Sharded) Has(ctx context.Context, key string) bool {
	_, ok := s.Get(ctx, key)
	return ok
}

// MGet reads keys in order.
func (s *Sharded) MGet(ctx context.Context, keys []string) []Result {
	out := make([]Result, len(keys))
	for i, k := range keys {
		v, ok := s.Get(ctx, k)
		out[i] = Result{Value: v, Found: ok}
	}
	return out
}

// MSet writes every entry.
func (s *Sharded) MSet(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if err := s.Set(ctx, e.Key, e.Value, e.TTL); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the number of entries held by the client.
func (s *Sharded) Size() int {
	return s.client.Size()
}

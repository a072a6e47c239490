package cache

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynconfig/internal/cacheinfra"
)

// MemoryConfig configures the in-process memory strategy.
type MemoryConfig = cacheinfra.MemoryConfig

// RemoteConfig configures the Redis-backed strategy.
type RemoteConfig = cacheinfra.RemoteConfig

// ShardedConfig configures the capacity bounded sturdyc strategy.
type ShardedConfig = cacheinfra.ShardedConfig

// ConfigError reports an invalid configuration field.
type ConfigError = cacheinfra.ConfigError

// Option configures a strategy.
type Option = cacheinfra.Option

// Memory, Remote, Tiered and Sharded are the concrete strategies returned by the constructors.
type (
	Memory  = cacheinfra.Memory
	Remote  = cacheinfra.Remote
	Tiered  = cacheinfra.Tiered
	Sharded = cacheinfra.Sharded
)

// DefaultRemoteTTL is applied to remote writes when neither the call nor the config sets one.
const DefaultRemoteTTL = cacheinfra.DefaultRemoteTTL

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(logger *zap.Logger) Option {
	return cacheinfra.WithLogger(logger)
}

// DefaultRemoteConfig returns a RemoteConfig using DefaultRemoteTTL.
func DefaultRemoteConfig() RemoteConfig {
	return cacheinfra.DefaultRemoteConfig()
}

// DefaultShardedConfig returns a ShardedConfig populated with sensible defaults.
func DefaultShardedConfig() ShardedConfig {
	return cacheinfra.DefaultShardedConfig()
}

// NewMemory creates a process-local strategy. Entries written without a ttl never expire
// unless cfg.DefaultTTL is set.
func NewMemory(cfg MemoryConfig, opts ...Option) (*Memory, error) {
	return cacheinfra.NewMemory(cfg, opts...)
}

// NewRemote creates a strategy that stores JSON values in Redis through client.
func NewRemote(client redis.UniversalClient, cfg RemoteConfig, opts ...Option) (*Remote, error) {
	return cacheinfra.NewRemote(client, cfg, opts...)
}

// NewTiered composes a shared primary with a local fallback.
func NewTiered(primary, fallback Strategy, opts ...Option) (*Tiered, error) {
	return cacheinfra.NewTiered(primary, fallback, opts...)
}

// NewSharded creates a capacity bounded in-process strategy backed by sturdyc.
func NewSharded(cfg ShardedConfig, opts ...Option) (*Sharded, error) {
	return cacheinfra.NewSharded(cfg, opts...)
}

package di

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-dynconfig/cache"
	"github.com/goliatone/go-dynconfig/dictionary"
	"github.com/goliatone/go-dynconfig/dynconfig"
)

// DictionaryScope is appended to CacheConfig.Prefix for the dictionary cache.
const DictionaryScope = dictionary.DefaultNamespace + cache.KeySeparator

// LocalCache selects the in-process cache tier.
type LocalCache string

const (
	LocalMemory  LocalCache = "memory"
	LocalSharded LocalCache = "sharded"
)

// CacheConfig configures the cache tiers. The remote tier is only built when a Redis client
// is supplied.
type CacheConfig struct {
	Local LocalCache

	// Prefix is shared by both managers. Each manager gets its own strategy scoped to
	// Prefix+ConfigKeyPrefix or Prefix+DictionaryScope, so clearing one never touches
	// the other.
	Prefix     string
	DefaultTTL time.Duration
	Sharded    cache.ShardedConfig
	Remote     cache.RemoteConfig
}

// Config configures a Container.
type Config struct {
	Cache CacheConfig

	// Preload loads every configuration item while the container is built.
	Preload bool

	// AutoMigrate creates the database tables when a database is supplied.
	AutoMigrate bool

	ConfigKeyPrefix string
	DictionaryTTL   time.Duration
}

// DefaultConfig returns a memory backed container configuration with preload enabled.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Local:   LocalMemory,
			Sharded: cache.DefaultShardedConfig(),
			Remote:  cache.DefaultRemoteConfig(),
		},
		Preload:         true,
		AutoMigrate:     true,
		ConfigKeyPrefix: dynconfig.DefaultKeyPrefix,
		DictionaryTTL:   dictionary.DefaultTTL,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Cache.Local {
	case LocalMemory:
	case LocalSharded:
		if err := c.Cache.Sharded.Validate(); err != nil {
			return fmt.Errorf("di: sharded cache: %w", err)
		}
	default:
		return fmt.Errorf("di: unknown local cache %q", c.Cache.Local)
	}
	if c.Cache.DefaultTTL < 0 {
		return fmt.Errorf("di: cache default ttl must be non-negative")
	}
	if c.ConfigKeyPrefix == "" {
		return fmt.Errorf("di: config key prefix is required")
	}
	if strings.HasPrefix(c.ConfigKeyPrefix, DictionaryScope) || strings.HasPrefix(DictionaryScope, c.ConfigKeyPrefix) {
		return fmt.Errorf("di: config key prefix %q overlaps the dictionary scope", c.ConfigKeyPrefix)
	}
	if c.DictionaryTTL < 0 {
		return fmt.Errorf("di: dictionary ttl must be non-negative")
	}
	return nil
}

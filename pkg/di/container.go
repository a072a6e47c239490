package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynconfig/cache"
	"github.com/goliatone/go-dynconfig/dictionary"
	"github.com/goliatone/go-dynconfig/dynconfig"
	"github.com/goliatone/go-dynconfig/store/bunstore"
)

// Container wires the cache tiers, the repositories and both managers. Connections passed
// in through options stay owned by the caller.
type Container struct {
	config       Config
	logger       *zap.Logger
	configCache  cache.Strategy
	dictCache    cache.Strategy
	configs      *dynconfig.Manager
	dictionaries *dictionary.Manager
}

// Option injects a collaborator into NewContainer.
type Option func(*deps)

type deps struct {
	db         *bun.DB
	redis      redis.UniversalClient
	logger     *zap.Logger
	configRepo dynconfig.Repository
	dictRepo   dictionary.Repository
}

// WithDB sets the database used by the bun repositories.
func WithDB(db *bun.DB) Option {
	return func(d *deps) {
		d.db = db
	}
}

// WithRedis adds a shared remote tier in front of the local cache.
func WithRedis(client redis.UniversalClient) Option {
	return func(d *deps) {
		d.redis = client
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *zap.Logger) Option {
	return func(d *deps) {
		d.logger = logger
	}
}

// WithRepositories replaces the bun repositories.
func WithRepositories(configs dynconfig.Repository, dictionaries dictionary.Repository) Option {
	return func(d *deps) {
		d.configRepo = configs
		d.dictRepo = dictionaries
	}
}

// NewContainer validates cfg and builds every component.
func NewContainer(ctx context.Context, cfg Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &deps{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}

	if d.db != nil {
		if cfg.AutoMigrate {
			if err := bunstore.CreateSchema(ctx, d.db); err != nil {
				return nil, err
			}
		}
		if d.configRepo == nil {
			d.configRepo = bunstore.NewConfigRepository(d.db, d.logger)
		}
		if d.dictRepo == nil {
			d.dictRepo = bunstore.NewDictionaryRepository(d.db)
		}
	}
	if d.configRepo == nil || d.dictRepo == nil {
		return nil, errors.New("di: a database or both repositories are required")
	}

	configCache, err := buildCache(cfg.Cache, cfg.ConfigKeyPrefix, d)
	if err != nil {
		return nil, err
	}
	dictCache, err := buildCache(cfg.Cache, DictionaryScope, d)
	if err != nil {
		return nil, err
	}

	// the strategies carry the namespaces, so physical keys stay Prefix+config:{key}
	// and Prefix+dictionary:{...}
	configs, err := dynconfig.NewManager(ctx, d.configRepo, configCache,
		dynconfig.WithPreload(cfg.Preload),
		dynconfig.WithKeyPrefix(""),
		dynconfig.WithLogger(d.logger),
	)
	if err != nil {
		return nil, err
	}

	dictionaries, err := dictionary.NewManager(d.dictRepo,
		dictionary.WithCache(dictCache),
		dictionary.WithNamespace(""),
		dictionary.WithTTL(cfg.DictionaryTTL),
		dictionary.WithLogger(d.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Container{
		config:       cfg,
		logger:       d.logger,
		configCache:  configCache,
		dictCache:    dictCache,
		configs:      configs,
		dictionaries: dictionaries,
	}, nil
}

// buildCache builds the local tier, and the tiered cache when Redis is present, with every
// key under cfg.Prefix+scope.
func buildCache(cfg CacheConfig, scope string, d *deps) (cache.Strategy, error) {
	opt := cache.WithLogger(d.logger)
	prefix := cfg.Prefix + scope

	var local cache.Strategy
	switch cfg.Local {
	case LocalSharded:
		sharded := cfg.Sharded
		sharded.Prefix = prefix
		s, err := cache.NewSharded(sharded, opt)
		if err != nil {
			return nil, fmt.Errorf("di: sharded cache: %w", err)
		}
		local = s
	default:
		m, err := cache.NewMemory(cache.MemoryConfig{Prefix: prefix, DefaultTTL: cfg.DefaultTTL}, opt)
		if err != nil {
			return nil, fmt.Errorf("di: memory cache: %w", err)
		}
		local = m
	}

	if d.redis == nil {
		return local, nil
	}

	remoteCfg := cfg.Remote
	remoteCfg.Prefix = prefix
	if remoteCfg.DefaultTTL == 0 {
		remoteCfg.DefaultTTL = cache.DefaultRemoteTTL
	}
	remote, err := cache.NewRemote(d.redis, remoteCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("di: remote cache: %w", err)
	}

	tiered, err := cache.NewTiered(remote, local, opt)
	if err != nil {
		return nil, fmt.Errorf("di: tiered cache: %w", err)
	}
	return tiered, nil
}

// ConfigCache returns the cache strategy of the configuration manager. Keys are bare
// configuration keys.
func (c *Container) ConfigCache() cache.Strategy {
	return c.configCache
}

// DictionaryCache returns the cache strategy of the dictionary manager. Keys omit the
// dictionary namespace, e.g. "tree:region".
func (c *Container) DictionaryCache() cache.Strategy {
	return c.dictCache
}

// Configs returns the configuration manager.
func (c *Container) Configs() *dynconfig.Manager {
	return c.configs
}

// Dictionaries returns the dictionary manager.
func (c *Container) Dictionaries() *dictionary.Manager {
	return c.dictionaries
}

// Config returns the configuration the container was built with.
func (c *Container) Config() Config {
	return c.config
}

// Logger returns the logger handed to every component.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

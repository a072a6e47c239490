package cacheinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultRemoteTTL is applied to remote writes when neither the call nor the config sets one.
const DefaultRemoteTTL = time.Hour

// RemoteConfig configures the Redis-backed strategy.
type RemoteConfig struct {
	// Prefix namespaces every key. Clear deletes keys matching Prefix + "*".
	Prefix string

	// DefaultTTL applies when a write carries no ttl. Remote entries always expire.
	DefaultTTL time.Duration
}

// DefaultRemoteConfig returns a RemoteConfig with DefaultRemoteTTL.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{DefaultTTL: DefaultRemoteTTL}
}

// Validate checks the remote configuration.
func (c RemoteConfig) Validate() error {
	if c.DefaultTTL <= 0 {
		return &ConfigError{Field: "DefaultTTL", Message: "must be greater than 0"}
	}
	return nil
}

// Remote stores JSON encoded values in Redis. Values that fail to decode on read are
// treated as misses.
type Remote struct {
	client redis.UniversalClient
	cfg    RemoteConfig
	logger *zap.Logger
}

var _ Strategy = (*Remote)(nil)

// NewRemote wraps client. The connection stays owned by the caller.
func NewRemote(client redis.UniversalClient, cfg RemoteConfig, opts ...Option) (*Remote, error) {
	if client == nil {
		return nil, &ConfigError{Field: "client", Message: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions("remote", opts)
	return &Remote{client: client, cfg: cfg, logger: o.logger}, nil
}

func (r *Remote) key(k string) string {
	return r.cfg.Prefix + k
}

func (r *Remote) decode(key string, raw string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		r.logger.Debug("discarding undecodable value", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return v, true
}

// Get reads and decodes key.
func (r *Remote) Get(ctx context.Context, key string) (any, bool) {
	raw, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("remote get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return r.decode(key, raw)
}

// Set encodes value and stores it with an expiry.
func (r *Remote) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for key %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), data, resolveTTL(ttl, r.cfg.DefaultTTL)).Err(); err != nil {
		return fmt.Errorf("remote set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (r *Remote) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("remote delete %s: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the prefix in a single DEL.
func (r *Remote) Clear(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, r.cfg.Prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("remote list keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("remote clear: %w", err)
	}
	return nil
}

// Has reports whether key exists.
func (r *Remote) Has(ctx context.Context, key string) bool {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		r.logger.Warn("remote exists failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return n > 0
}

// MGet reads keys with a single MGET.
func (r *Remote) MGet(ctx context.Context, keys []string) []Result {
	out := make([]Result, len(keys))
	if len(keys) == 0 {
		return out
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}

	values, err := r.client.MGet(ctx, prefixed...).Result()
	if err != nil {
		r.logger.Warn("remote mget failed", zap.Int("keys", len(keys)), zap.Error(err))
		return out
	}

	for i, v := range values {
		if i >= len(out) {
			break
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		if decoded, ok := r.decode(keys[i], raw); ok {
			out[i] = Result{Value: decoded, Found: true}
		}
	}
	return out
}

// MSet writes all entries in one pipeline. The batch is not atomic: on a network failure
// some keys may already be written.
func (r *Remote) MSet(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, e := range entries {
		data, err := json.Marshal(e.Value)
		if err != nil {
			return fmt.Errorf("encode value for key %s: %w", e.Key, err)
		}
		pipe.Set(ctx, r.key(e.Key), data, resolveTTL(e.TTL, r.cfg.DefaultTTL))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remote mset: %w", err)
	}
	return nil
}

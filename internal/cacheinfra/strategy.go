package cacheinfra

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Strategy is the key/value contract shared by every cache backend.
//
// Reads never fail: a miss and a backend error both report found == false. Writes return
// the backend error so composite strategies can decide whether to surface it.
type Strategy interface {
	Get(ctx context.Context, key string) (any, bool)
	// Set stores value under key. A ttl <= 0 selects the strategy default.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
	// MGet returns one Result per key, in input order.
	MGet(ctx context.Context, keys []string) []Result
	MSet(ctx context.Context, entries []Entry) error
}

// Entry is a single write in a batch. A TTL <= 0 selects the strategy default.
type Entry struct {
	Key   string
	Value any
	TTL   time.Duration
}

// Result is a single read in a batch.
type Result struct {
	Value any
	Found bool
}

// Option configures a strategy.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(name string, opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.Named(name)
	return o
}

// resolveTTL picks ttl when set, otherwise fallback.
func resolveTTL(ttl, fallback time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return fallback
}

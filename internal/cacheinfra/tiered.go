package cacheinfra

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Tiered composes a shared primary tier with a local fallback tier.
//
// Reads prefer the primary and backfill whichever tier missed. Writes go to both tiers
// concurrently; a primary failure is logged and dropped, a fallback failure is returned.
// Either tier may itself be a Tiered strategy.
type Tiered struct {
	primary  Strategy
	fallback Strategy
	logger   *zap.Logger
}

var _ Strategy = (*Tiered)(nil)

// NewTiered composes primary and fallback.
func NewTiered(primary, fallback Strategy, opts ...Option) (*Tiered, error) {
	if primary == nil {
		return nil, &ConfigError{Field: "primary", Message: "cannot be nil"}
	}
	if fallback == nil {
		return nil, &ConfigError{Field: "fallback", Message: "cannot be nil"}
	}
	o := applyOptions("tiered", opts)
	return &Tiered{primary: primary, fallback: fallback, logger: o.logger}, nil
}

// bestEffort runs fn and logs its error instead of returning it.
func (t *Tiered) bestEffort(op, tier string, fn func() error) {
	if err := fn(); err != nil {
		t.logger.Warn("cache tier operation failed",
			zap.String("op", op),
			zap.String("tier", tier),
			zap.Error(err),
		)
	}
}

// both runs primaryFn and fallbackFn concurrently. Only the fallback error is returned.
func (t *Tiered) both(op string, primaryFn, fallbackFn func() error) error {
	var g errgroup.Group
	g.Go(func() error {
		t.bestEffort(op, "primary", primaryFn)
		return nil
	})
	g.Go(fallbackFn)
	return g.Wait()
}

// Get reads the primary first, then the fallback, copying a hit into the tier that missed.
func (t *Tiered) Get(ctx context.Context, key string) (any, bool) {
	if v, ok := t.primary.Get(ctx, key); ok {
		t.bestEffort("backfill", "fallback", func() error {
			return t.fallback.Set(ctx, key, v, 0)
		})
		return v, true
	}

	if v, ok := t.fallback.Get(ctx, key); ok {
		t.bestEffort("backfill", "primary", func() error {
			return t.primary.Set(ctx, key, v, 0)
		})
		return v, true
	}

	return nil, false
}

// Set writes both tiers.
func (t *Tiered) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return t.both("set",
		func() error { return t.primary.Set(ctx, key, value, ttl) },
		func() error { return t.fallback.Set(ctx, key, value, ttl) },
	)
}

// Delete removes key from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	return t.both("delete",
		func() error { return t.primary.Delete(ctx, key) },
		func() error { return t.fallback.Delete(ctx, key) },
	)
}

// Clear clears both tiers.
func (t *Tiered) Clear(ctx context.Context) error {
	return t.both("clear",
		func() error { return t.primary.Clear(ctx) },
		func() error { return t.fallback.Clear(ctx) },
	)
}

// Has checks the primary, then the fallback.
func (t *Tiered) Has(ctx context.Context, key string) bool {
	if t.primary.Has(ctx, key) {
		return true
	}
	return t.fallback.Has(ctx, key)
}

// MGet reads all keys from the primary in one batch and only the misses from the fallback.
// Values served by the fallback are written back to the primary in the background.
func (t *Tiered) MGet(ctx context.Context, keys []string) []Result {
	out := t.primary.MGet(ctx, keys)
	if len(out) != len(keys) {
		out = make([]Result, len(keys))
	}

	var missing []int
	for i, r := range out {
		if !r.Found {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return out
	}

	missingKeys := make([]string, len(missing))
	for j, i := range missing {
		missingKeys[j] = keys[i]
	}

	var backfill []Entry
	for j, r := range t.fallback.MGet(ctx, missingKeys) {
		if j >= len(missing) || !r.Found {
			continue
		}
		out[missing[j]] = r
		backfill = append(backfill, Entry{Key: missingKeys[j], Value: r.Value})
	}

	if len(backfill) > 0 {
		bctx := context.WithoutCancel(ctx)
		go t.bestEffort("backfill", "primary", func() error {
			return t.primary.MSet(bctx, backfill)
		})
	}

	return out
}

// MSet writes all entries to both tiers.
func (t *Tiered) MSet(ctx context.Context, entries []Entry) error {
	return t.both("mset",
		func() error { return t.primary.MSet(ctx, entries) },
		func() error { return t.fallback.MSet(ctx, entries) },
	)
}

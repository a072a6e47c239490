package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-dynconfig/internal/cacheinfra"
)

var (
	// ErrInvalidResultType is returned when a cached value cannot be converted to the requested type.
	ErrInvalidResultType = errors.New("cache: invalid result type")

	// ErrCacheWrite marks a GetOrFetch result that was fetched but could not be cached.
	ErrCacheWrite = errors.New("cache: write failed")
)

// Strategy is the key/value contract implemented by every cache backend.
//
// Get, MGet and Has never fail: a miss and a backend error are reported the same way.
// Set, Delete, Clear and MSet return backend errors. A ttl <= 0 selects the strategy default.
type Strategy = cacheinfra.Strategy

// Entry is a single write in an MSet batch.
type Entry = cacheinfra.Entry

// Result is a single read in an MGet batch.
type Result = cacheinfra.Result

// FetchFn is the function signature GetOrFetch expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// As converts a cached value to T. Values written by the same process are returned as is;
// values that went through a JSON round trip (remote tiers) are re-decoded into T.
func As[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("%w: %T: %v", ErrInvalidResultType, v, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("%w: %T to %T: %v", ErrInvalidResultType, v, zero, err)
	}
	return out, nil
}

// Get is a type-safe wrapper around Strategy.Get. A value that cannot be converted to T is
// reported as a miss.
func Get[T any](ctx context.Context, s Strategy, key string) (T, bool) {
	var zero T
	v, ok := s.Get(ctx, key)
	if !ok {
		return zero, false
	}
	typed, err := As[T](v)
	if err != nil {
		return zero, false
	}
	return typed, true
}

// GetOrFetch reads key from s and, on a miss, calls fetchFn and stores its result with ttl.
// Fetch errors are returned and nothing is cached. When only the cache write fails the
// fetched value is returned with an error matching ErrCacheWrite.
func GetOrFetch[T any](ctx context.Context, s Strategy, key string, ttl time.Duration, fetchFn FetchFn[T]) (T, error) {
	if v, ok := Get[T](ctx, s, key); ok {
		return v, nil
	}

	result, err := fetchFn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := s.Set(ctx, key, result, ttl); err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrCacheWrite, key, err)
	}
	return result, nil
}

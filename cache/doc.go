// Package cache provides the key/value cache contract used by the configuration and
// dictionary managers, together with its backends.
//
// # Overview
//
// Every backend implements Strategy:
//
//   - Memory: process-local map with per-entry TTL, lazy eviction and an explicit Cleanup sweep
//   - Remote: Redis, values stored as JSON, batched reads with MGET and pipelined writes
//   - Tiered: a shared primary in front of a local fallback with a fixed consistency policy
//   - Sharded: capacity bounded in-process cache backed by sturdyc
//
// Reads never fail. A miss and a backend error look the same to the caller, so a broken
// Redis connection degrades to slower reads instead of errors. Writes return errors, except
// that a Tiered cache drops (and logs) failures of its primary tier.
//
// # Tiered consistency
//
// The tiered policy treats the primary (usually Remote) as the source of truth shared
// between processes and the fallback (usually Memory) as a resilience shim:
//
//  1. Get reads the primary; on a hit the value is copied into the fallback
//  2. On a primary miss the fallback is read and a hit is copied back into the primary
//  3. Set, MSet, Delete and Clear run against both tiers concurrently
//  4. MGet asks the fallback only for the keys the primary missed
//
// Tiered strategies nest, so a three tier cache is two Tiered values.
//
// # Basic Usage
//
//	local, _ := cache.NewMemory(cache.MemoryConfig{Prefix: "app:"})
//	remote, _ := cache.NewRemote(redisClient, cache.DefaultRemoteConfig())
//	tiered, _ := cache.NewTiered(remote, local, cache.WithLogger(logger))
//
//	_ = tiered.Set(ctx, "site.name", "Acme", 0)
//	name, ok := cache.Get[string](ctx, tiered, "site.name")
//
// Values that crossed a remote tier come back in their JSON shape (map[string]any,
// []any, float64). Get and As convert them back into the requested Go type.
//
// # Key Serialization
//
// NewKeySerializer builds colon separated keys under a namespace:
//
//	keys := cache.NewKeySerializer("dictionary")
//	keys.SerializeKey("code", "country") // dictionary:code:country
package cache

package cacheinfra

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errTierDown = errors.New("tier unavailable")

// flakyStrategy wraps a memory strategy and fails selected operations.
type flakyStrategy struct {
	*Memory
	mu    sync.Mutex
	fail  map[string]bool
	calls map[string]int
	keys  map[string][]string
}

func newFlaky(t *testing.T) *flakyStrategy {
	t.Helper()
	return &flakyStrategy{
		Memory: newTestMemory(t, MemoryConfig{}),
		fail:   make(map[string]bool),
		calls:  make(map[string]int),
		keys:   make(map[string][]string),
	}
}

func (f *flakyStrategy) failOn(ops ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, op := range ops {
		f.fail[op] = true
	}
}

func (f *flakyStrategy) record(op string, keys ...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.keys[op] = append(f.keys[op], keys...)
	return f.fail[op]
}

func (f *flakyStrategy) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *flakyStrategy) keysFor(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys[op]...)
}

func (f *flakyStrategy) Get(ctx context.Context, key string) (any, bool) {
	if f.record("get", key) {
		return nil, false
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyStrategy) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.record("set", key) {
		return errTierDown
	}
	return f.Memory.Set(ctx, key, value, ttl)
}

func (f *flakyStrategy) Delete(ctx context.Context, key string) error {
	if f.record("delete", key) {
		return errTierDown
	}
	return f.Memory.Delete(ctx, key)
}

func (f *flakyStrategy) Clear(ctx context.Context) error {
	if f.record("clear") {
		return errTierDown
	}
	return f.Memory.Clear(ctx)
}

func (f *flakyStrategy) Has(ctx context.Context, key string) bool {
	if f.record("has", key) {
		return false
	}
	return f.Memory.Has(ctx, key)
}

func (f *flakyStrategy) MGet(ctx context.Context, keys []string) []Result {
	if f.record("mget", keys...) {
		return make([]Result, len(keys))
	}
	return f.Memory.MGet(ctx, keys)
}

func (f *flakyStrategy) MSet(ctx context.Context, entries []Entry) error {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	if f.record("mset", keys...) {
		return errTierDown
	}
	return f.Memory.MSet(ctx, entries)
}

func newTestTiered(t *testing.T) (*Tiered, *flakyStrategy, *flakyStrategy, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	primary, fallback := newFlaky(t), newFlaky(t)
	tiered, err := NewTiered(primary, fallback, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	return tiered, primary, fallback, logs
}

func TestNewTiered_RequiresBothTiers(t *testing.T) {
	m := newTestMemory(t, MemoryConfig{})
	if _, err := NewTiered(nil, m); err == nil {
		t.Error("expected nil primary to be rejected")
	}
	if _, err := NewTiered(m, nil); err == nil {
		t.Error("expected nil fallback to be rejected")
	}
}

func TestTiered_GetPrefersPrimaryAndOverwritesFallback(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, _ := newTestTiered(t)

	_ = primary.Memory.Set(ctx, "k", "from-primary", 0)
	_ = fallback.Memory.Set(ctx, "k", "from-fallback", 0)

	v, ok := tiered.Get(ctx, "k")
	if !ok || v != "from-primary" {
		t.Fatalf("expected primary value, got %v", v)
	}

	if fv, _ := fallback.Memory.Get(ctx, "k"); fv != "from-primary" {
		t.Errorf("expected fallback to be overwritten with primary value, got %v", fv)
	}
	if fallback.callCount("get") != 0 {
		t.Error("fallback should not be read on a primary hit")
	}
}

func TestTiered_GetFallsBackAndBackfillsPrimary(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, _ := newTestTiered(t)

	_ = fallback.Memory.Set(ctx, "k", 42, 0)

	v, ok := tiered.Get(ctx, "k")
	if !ok || v != 42 {
		t.Fatalf("expected fallback value, got %v", v)
	}
	if pv, ok := primary.Memory.Get(ctx, "k"); !ok || pv != 42 {
		t.Errorf("expected primary to be backfilled, got %v", pv)
	}
}

func TestTiered_GetBackfillFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, logs := newTestTiered(t)

	_ = fallback.Memory.Set(ctx, "k", "v", 0)
	primary.failOn("set")

	if v, ok := tiered.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("expected value despite backfill failure, got %v", v)
	}
	if logs.FilterMessage("cache tier operation failed").Len() != 1 {
		t.Error("expected backfill failure to be logged")
	}
}

func TestTiered_GetMissOnBothTiers(t *testing.T) {
	tiered, _, _, _ := newTestTiered(t)
	if _, ok := tiered.Get(context.Background(), "nope"); ok {
		t.Error("expected miss")
	}
}

func TestTiered_SetSurvivesPrimaryFailure(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, logs := newTestTiered(t)
	primary.failOn("set")

	if err := tiered.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("expected primary failure to be swallowed, got %v", err)
	}

	if v, ok := tiered.Get(ctx, "k"); !ok || v != "v" {
		t.Errorf("expected value from fallback, got %v", v)
	}
	if !fallback.Memory.Has(ctx, "k") {
		t.Error("expected fallback to hold the value")
	}

	warn := logs.FilterMessage("cache tier operation failed").FilterField(zap.String("tier", "primary"))
	if warn.Len() == 0 {
		t.Error("expected swallowed primary failure to be logged")
	}
}

func TestTiered_FallbackFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, _ := newTestTiered(t)
	fallback.failOn("set", "delete", "clear", "mset")

	if err := tiered.Set(ctx, "k", "v", 0); !errors.Is(err, errTierDown) {
		t.Errorf("expected fallback set error, got %v", err)
	}
	if err := tiered.Delete(ctx, "k"); !errors.Is(err, errTierDown) {
		t.Errorf("expected fallback delete error, got %v", err)
	}
	if err := tiered.Clear(ctx); !errors.Is(err, errTierDown) {
		t.Errorf("expected fallback clear error, got %v", err)
	}
	if err := tiered.MSet(ctx, []Entry{{Key: "a", Value: 1}}); !errors.Is(err, errTierDown) {
		t.Errorf("expected fallback mset error, got %v", err)
	}

	// the primary still received every write
	if primary.callCount("set") != 1 || primary.callCount("mset") != 1 {
		t.Error("expected primary writes to be attempted")
	}
}

func TestTiered_WritesReachBothTiers(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, _ := newTestTiered(t)

	_ = tiered.MSet(ctx, []Entry{{Key: "a", Value: 1}, {Key: "b", Value: 2}})
	for _, tier := range []*flakyStrategy{primary, fallback} {
		if !tier.Memory.Has(ctx, "a") || !tier.Memory.Has(ctx, "b") {
			t.Error("expected both tiers to receive mset")
		}
	}

	primary.failOn("delete", "clear")
	if err := tiered.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if fallback.Memory.Has(ctx, "a") {
		t.Error("expected fallback delete despite primary failure")
	}

	if err := tiered.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if fallback.Memory.Size() != 0 {
		t.Error("expected fallback to be cleared")
	}
}

func TestTiered_Has(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, _ := newTestTiered(t)

	_ = primary.Memory.Set(ctx, "p", 1, 0)
	_ = fallback.Memory.Set(ctx, "f", 1, 0)

	if !tiered.Has(ctx, "p") {
		t.Error("expected primary key")
	}
	if fallback.callCount("has") != 0 {
		t.Error("fallback should not be consulted when primary has the key")
	}
	if !tiered.Has(ctx, "f") {
		t.Error("expected fallback key")
	}
	if tiered.Has(ctx, "none") {
		t.Error("expected unknown key to be absent")
	}
}

func TestTiered_MGetMergesAndBackfills(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, _ := newTestTiered(t)

	_ = primary.Memory.Set(ctx, "a", "pa", 0)
	_ = fallback.Memory.Set(ctx, "a", "fa", 0)
	_ = fallback.Memory.Set(ctx, "c", "fc", 0)

	got := tiered.MGet(ctx, []string{"a", "b", "c"})
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Value != "pa" || got[1].Found || got[2].Value != "fc" {
		t.Errorf("unexpected merged results %+v", got)
	}

	if keys := fallback.keysFor("mget"); len(keys) != 2 || keys[0] != "b" || keys[1] != "c" {
		t.Errorf("expected fallback to be asked only for misses, got %v", keys)
	}

	deadline := time.Now().Add(time.Second)
	for !primary.Memory.Has(ctx, "c") {
		if time.Now().After(deadline) {
			t.Fatal("expected fallback-sourced value to be written back to primary")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if primary.Memory.Has(ctx, "b") {
		t.Error("missing key must not be backfilled")
	}
}

func TestTiered_MGetAllFromPrimary(t *testing.T) {
	ctx := context.Background()
	tiered, primary, fallback, _ := newTestTiered(t)
	_ = primary.Memory.Set(ctx, "a", 1, 0)

	got := tiered.MGet(ctx, []string{"a"})
	if !got[0].Found {
		t.Fatal("expected hit")
	}
	if fallback.callCount("mget") != 0 {
		t.Error("fallback should not be queried when primary answers every key")
	}
}

func TestTiered_Nesting(t *testing.T) {
	ctx := context.Background()
	l1, l2, l3 := newFlaky(t), newFlaky(t), newFlaky(t)

	inner, err := NewTiered(l2, l3)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}
	outer, err := NewTiered(l1, inner)
	if err != nil {
		t.Fatalf("NewTiered: %v", err)
	}

	if err := outer.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	for i, tier := range []*flakyStrategy{l1, l2, l3} {
		if !tier.Memory.Has(ctx, "k") {
			t.Errorf("expected tier %d to hold the value", i+1)
		}
	}
}

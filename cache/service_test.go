package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type settings struct {
	Name  string `json:"name"`
	Ports []int  `json:"ports"`
}

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	m, err := NewMemory(MemoryConfig{})
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	return m
}

func TestAs_DirectType(t *testing.T) {
	got, err := As[string]("value")
	if err != nil || got != "value" {
		t.Errorf("expected direct assertion, got %q, %v", got, err)
	}

	n, err := As[int](nil)
	if err != nil || n != 0 {
		t.Errorf("expected zero value for nil, got %d, %v", n, err)
	}
}

func TestAs_JSONShapedValue(t *testing.T) {
	// shape produced by a remote tier after a JSON round trip
	raw := map[string]any{"name": "Acme", "ports": []any{float64(80), float64(443)}}

	got, err := As[settings](raw)
	if err != nil {
		t.Fatalf("As: %v", err)
	}
	if got.Name != "Acme" || len(got.Ports) != 2 || got.Ports[1] != 443 {
		t.Errorf("unexpected conversion %+v", got)
	}
}

func TestAs_TypeAssertionFailure(t *testing.T) {
	result, err := As[int]("wrong-type")
	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType but got: %v", err)
	}
	if result != 0 {
		t.Errorf("expected zero value (0) but got: %v", result)
	}
}

func TestGet_Typed(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	_ = m.Set(ctx, "s", map[string]any{"name": "x"}, 0)
	_ = m.Set(ctx, "n", "not-a-number", 0)

	s, ok := Get[settings](ctx, m, "s")
	if !ok || s.Name != "x" {
		t.Errorf("expected converted struct, got %+v (found=%v)", s, ok)
	}

	if _, ok := Get[int](ctx, m, "n"); ok {
		t.Error("expected unconvertible value to read as a miss")
	}
	if _, ok := Get[string](ctx, m, "missing"); ok {
		t.Error("expected miss")
	}
}

func TestGetOrFetch_MissThenHit(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)

	calls := 0
	fetch := func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrFetch[[]string](ctx, m, "list", time.Minute, fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("unexpected result %v", got)
		}
	}

	if calls != 1 {
		t.Errorf("expected a single fetch, got %d", calls)
	}
}

func TestGetOrFetch_FetchError(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t)
	boom := errors.New("db down")

	_, err := GetOrFetch[int](ctx, m, "k", 0, func(ctx context.Context) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected fetch error, got %v", err)
	}
	if m.Has(ctx, "k") {
		t.Error("failed fetch must not populate the cache")
	}
}

type readOnlyStrategy struct {
	*Memory
}

func (readOnlyStrategy) Set(context.Context, string, any, time.Duration) error {
	return errors.New("read only")
}

func TestGetOrFetch_CacheWriteFailure(t *testing.T) {
	ctx := context.Background()
	s := readOnlyStrategy{Memory: newTestMemory(t)}

	got, err := GetOrFetch[string](ctx, s, "k", 0, func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	if !errors.Is(err, ErrCacheWrite) {
		t.Errorf("expected ErrCacheWrite, got %v", err)
	}
	if got != "fresh" {
		t.Errorf("expected fetched value to be returned, got %q", got)
	}
}

func TestConstructors(t *testing.T) {
	if _, err := NewSharded(DefaultShardedConfig()); err != nil {
		t.Errorf("NewSharded: %v", err)
	}

	m := newTestMemory(t)
	if _, err := NewTiered(m, m); err != nil {
		t.Errorf("NewTiered: %v", err)
	}

	var cfgErr *ConfigError
	if _, err := NewRemote(nil, DefaultRemoteConfig()); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError for nil client, got %v", err)
	}
	if DefaultRemoteConfig().DefaultTTL != DefaultRemoteTTL {
		t.Error("expected default remote ttl")
	}
}

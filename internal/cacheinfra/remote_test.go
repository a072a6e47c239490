package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRemote(t *testing.T, cfg RemoteConfig) (*Remote, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	r, err := NewRemote(client, cfg)
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}
	return r, mr
}

func TestRemoteConfig_Validate(t *testing.T) {
	if err := DefaultRemoteConfig().Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}

	var cfgErr *ConfigError
	if err := (RemoteConfig{}).Validate(); !errors.As(err, &cfgErr) || cfgErr.Field != "DefaultTTL" {
		t.Errorf("expected DefaultTTL error, got %v", err)
	}

	if _, err := NewRemote(nil, DefaultRemoteConfig()); err == nil {
		t.Error("expected nil client to be rejected")
	}
}

func TestRemote_SetGetJSON(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRemote(t, RemoteConfig{Prefix: "app:", DefaultTTL: time.Minute})

	if err := r.Set(ctx, "site", map[string]any{"name": "Acme", "port": 80}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	raw, err := mr.Get("app:site")
	if err != nil {
		t.Fatalf("expected prefixed key in redis: %v", err)
	}
	if raw != `{"name":"Acme","port":80}` {
		t.Errorf("unexpected stored payload %s", raw)
	}
	if ttl := mr.TTL("app:site"); ttl != time.Minute {
		t.Errorf("expected default ttl of 1m, got %v", ttl)
	}

	v, ok := r.Get(ctx, "site")
	if !ok {
		t.Fatal("expected hit")
	}
	obj := v.(map[string]any)
	if obj["name"] != "Acme" || obj["port"] != float64(80) {
		t.Errorf("unexpected decoded value %#v", obj)
	}
}

func TestRemote_ExplicitTTL(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRemote(t, DefaultRemoteConfig())

	_ = r.Set(ctx, "k", 1, 5*time.Second)
	if ttl := mr.TTL("k"); ttl != 5*time.Second {
		t.Errorf("expected 5s ttl, got %v", ttl)
	}

	mr.FastForward(6 * time.Second)
	if r.Has(ctx, "k") {
		t.Error("expected key to expire")
	}
}

func TestRemote_UndecodableValueIsMiss(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRemote(t, DefaultRemoteConfig())

	if err := mr.Set("broken", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, ok := r.Get(ctx, "broken"); ok {
		t.Error("expected malformed payload to read as a miss")
	}
	got := r.MGet(ctx, []string{"broken"})
	if got[0].Found {
		t.Error("expected malformed payload to miss in MGet")
	}
}

func TestRemote_ConnectionFailureIsMissOnRead(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRemote(t, DefaultRemoteConfig())
	_ = r.Set(ctx, "k", "v", 0)

	mr.SetError("ERR simulated outage")
	defer mr.SetError("")

	if _, ok := r.Get(ctx, "k"); ok {
		t.Error("expected read failure to look like a miss")
	}
	if r.Has(ctx, "k") {
		t.Error("expected Has to be false on failure")
	}
	if err := r.Set(ctx, "k", "v2", 0); err == nil {
		t.Error("expected write failure to surface")
	}
}

func TestRemote_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRemote(t, RemoteConfig{Prefix: "cfg:", DefaultTTL: time.Hour})

	_ = r.Set(ctx, "a", 1, 0)
	_ = r.Set(ctx, "b", 2, 0)
	_ = mr.Set("other", "1")

	if err := r.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if r.Has(ctx, "a") {
		t.Error("expected a to be deleted")
	}

	if err := r.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if mr.Exists("cfg:b") {
		t.Error("expected prefixed key to be cleared")
	}
	if !mr.Exists("other") {
		t.Error("expected key outside prefix to survive")
	}

	// nothing left to clear
	if err := r.Clear(ctx); err != nil {
		t.Errorf("Clear on empty prefix: %v", err)
	}
}

func TestRemote_Batch(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRemote(t, DefaultRemoteConfig())

	err := r.MSet(ctx, []Entry{
		{Key: "a", Value: "A", TTL: 10 * time.Second},
		{Key: "c", Value: []any{1, 2}},
	})
	if err != nil {
		t.Fatalf("MSet: %v", err)
	}

	if ttl := mr.TTL("a"); ttl != 10*time.Second {
		t.Errorf("expected per-entry ttl, got %v", ttl)
	}
	if ttl := mr.TTL("c"); ttl != DefaultRemoteTTL {
		t.Errorf("expected default ttl, got %v", ttl)
	}

	got := r.MGet(ctx, []string{"a", "b", "c"})
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if !got[0].Found || got[0].Value != "A" {
		t.Errorf("unexpected a: %+v", got[0])
	}
	if got[1].Found {
		t.Errorf("expected b to miss")
	}
	if arr, ok := got[2].Value.([]any); !ok || len(arr) != 2 {
		t.Errorf("unexpected c: %+v", got[2])
	}

	if empty := r.MGet(ctx, nil); len(empty) != 0 {
		t.Errorf("expected empty result for no keys")
	}
	if err := r.MSet(ctx, nil); err != nil {
		t.Errorf("MSet with no entries: %v", err)
	}
}

func TestRemote_UnencodableValue(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRemote(t, DefaultRemoteConfig())

	if err := r.Set(ctx, "ch", make(chan int), 0); err == nil {
		t.Error("expected encode error")
	}
	if err := r.MSet(ctx, []Entry{{Key: "f", Value: func() {}}}); err == nil {
		t.Error("expected encode error in batch")
	}
}

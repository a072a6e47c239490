package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultShardedConfig(t *testing.T) {
	cfg := DefaultShardedConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 256 {
		t.Errorf("expected NumShards to be 256, got %d", cfg.NumShards)
	}

	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected TTL to be 5 minutes, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestShardedConfig_Validate(t *testing.T) {
	valid := DefaultShardedConfig()

	tests := []struct {
		name      string
		mutate    func(*ShardedConfig)
		wantField string
	}{
		{"valid default config", func(*ShardedConfig) {}, ""},
		{"invalid capacity - zero", func(c *ShardedConfig) { c.Capacity = 0 }, "Capacity"},
		{"invalid num shards - zero", func(c *ShardedConfig) { c.NumShards = 0 }, "NumShards"},
		{"invalid TTL - zero", func(c *ShardedConfig) { c.TTL = 0 }, "TTL"},
		{"invalid eviction percentage - too low", func(c *ShardedConfig) { c.EvictionPercentage = 0 }, "EvictionPercentage"},
		{"invalid eviction percentage - too high", func(c *ShardedConfig) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
		{"invalid eviction interval", func(c *ShardedConfig) { c.EvictionInterval = -time.Second }, "EvictionInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("expected no validation error but got: %v", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, cfgErr.Field)
			}
		})
	}
}

func TestShardedConfig_ToSturdycOptions(t *testing.T) {
	if got := len(DefaultShardedConfig().ToSturdycOptions()); got != 0 {
		t.Errorf("expected no sturdyc options for default config, got %d", got)
	}

	cfg := DefaultShardedConfig()
	cfg.EvictionInterval = time.Second
	if got := len(cfg.ToSturdycOptions()); got != 1 {
		t.Errorf("expected one sturdyc option with eviction interval, got %d", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "TestField", Message: "test message"}
	expected := "config error in field TestField: test message"

	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}

func TestNewSharded_InvalidConfig(t *testing.T) {
	cfg := DefaultShardedConfig()
	cfg.Capacity = -1

	s, err := NewSharded(cfg)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if s != nil {
		t.Error("expected nil strategy on error")
	}
	if !strings.Contains(err.Error(), "Capacity") {
		t.Errorf("expected error to mention Capacity, got %v", err)
	}
}

func TestSharded_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewSharded(DefaultShardedConfig())
	if err != nil {
		t.Fatalf("NewSharded: %v", err)
	}

	if err := s.Set(ctx, "a", "value-a", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, ok := s.Get(ctx, "a")
	if !ok || v != "value-a" {
		t.Fatalf("expected value-a, got %v (found=%v)", v, ok)
	}

	if !s.Has(ctx, "a") {
		t.Error("expected Has to report true")
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := s.Get(ctx, "a"); ok {
		t.Error("expected miss after delete")
	}
}

func TestSharded_PerEntryTTL(t *testing.T) {
	ctx := context.Background()
	s, err := NewSharded(DefaultShardedConfig())
	if err != nil {
		t.Fatalf("NewSharded: %v", err)
	}

	now := time.Now()
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, "short", 1, time.Second)
	_ = s.Set(ctx, "long", 2, 0)

	now = now.Add(2 * time.Second)

	if _, ok := s.Get(ctx, "short"); ok {
		t.Error("expected short-lived entry to expire")
	}
	if v, ok := s.Get(ctx, "long"); !ok || v != 2 {
		t.Errorf("expected long-lived entry to survive, got %v", v)
	}
}

func TestSharded_ClearRespectsPrefix(t *testing.T) {
	ctx := context.Background()

	cfg := DefaultShardedConfig()
	cfg.Prefix = "app:"
	scoped, err := NewSharded(cfg)
	if err != nil {
		t.Fatalf("NewSharded: %v", err)
	}

	// write a foreign key straight into the shared client
	scoped.client.Set("other:x", shardedEntry{value: 1})
	_ = scoped.Set(ctx, "x", 2, 0)
	_ = scoped.Set(ctx, "y", 3, 0)

	if err := scoped.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if scoped.Has(ctx, "x") || scoped.Has(ctx, "y") {
		t.Error("expected prefixed keys to be cleared")
	}
	if _, ok := scoped.client.Get("other:x"); !ok {
		t.Error("expected foreign key to survive clear")
	}
	if scoped.Size() != 1 {
		t.Errorf("expected size 1, got %d", scoped.Size())
	}
}

func TestSharded_Batch(t *testing.T) {
	ctx := context.Background()
	s, err := NewSharded(DefaultShardedConfig())
	if err != nil {
		t.Fatalf("NewSharded: %v", err)
	}

	err = s.MSet(ctx, []Entry{{Key: "a", Value: 1}, {Key: "c", Value: 3}})
	if err != nil {
		t.Fatalf("MSet: %v", err)
	}

	got := s.MGet(ctx, []string{"a", "b", "c"})
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if !got[0].Found || got[0].Value != 1 || got[1].Found || !got[2].Found || got[2].Value != 3 {
		t.Errorf("unexpected batch results %+v", got)
	}
}

func TestSharded_InterfaceCompliance(t *testing.T) {
	s, err := NewSharded(DefaultShardedConfig())
	if err != nil {
		t.Fatalf("NewSharded: %v", err)
	}

	var _ Strategy = s
}

package dynconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynconfig/cache"
	"github.com/goliatone/go-dynconfig/codec"
)

// Manager serves configuration values from a cache backed by a Repository.
type Manager struct {
	repo        Repository
	cache       cache.Strategy
	logger      *zap.Logger
	prefix      string
	ttl         time.Duration
	preload     bool
	initialized atomic.Bool
}

// NewManager builds a Manager. Unless WithPreload(false) is given every item is loaded into
// the cache before returning, and a failed load fails construction.
func NewManager(ctx context.Context, repo Repository, strategy cache.Strategy, opts ...Option) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("dynconfig: repository is required")
	}
	if strategy == nil {
		return nil, errors.New("dynconfig: cache strategy is required")
	}

	m := &Manager{
		repo:    repo,
		cache:   strategy,
		logger:  zap.NewNop(),
		prefix:  DefaultKeyPrefix,
		preload: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("dynconfig")

	if m.preload {
		if err := m.LoadAll(ctx); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Manager) key(k string) string {
	return m.prefix + k
}

func (m *Manager) decode(item Item) any {
	v, err := codec.DecodeValue(item.Value, item.Type)
	if err != nil {
		m.logger.Debug("config value decode failed",
			zap.String("key", item.Key),
			zap.String("type", string(item.Type)),
			zap.Error(err),
		)
	}
	return v
}

func (m *Manager) resolve(item Item) Resolved {
	r := Resolved{
		Key:         item.Key,
		Value:       m.decode(item),
		Type:        item.Type,
		Category:    item.Category,
		Label:       item.Label,
		Description: item.Description,
		IsPublic:    item.IsPublic,
		IsRequired:  item.IsRequired,
		Sort:        item.Sort,
	}
	if item.DefaultValue != "" {
		r.DefaultValue = codec.ParseValue(item.DefaultValue, item.Type)
	}
	if item.Type == codec.TypeEnum {
		r.Options = codec.ParseOptions(item.Options)
	}
	return r
}

// LoadAll reads every item from the repository and writes the decoded values to the cache
// in one batch. Repository and cache failures are returned.
func (m *Manager) LoadAll(ctx context.Context) error {
	items, err := m.repo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("dynconfig: load configs: %w", err)
	}

	entries := make([]cache.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, cache.Entry{
			Key:   m.key(item.Key),
			Value: m.decode(item),
			TTL:   m.ttl,
		})
	}

	if err := m.cache.MSet(ctx, entries); err != nil {
		return fmt.Errorf("dynconfig: populate cache: %w", err)
	}

	m.initialized.Store(true)
	m.logger.Info("configuration loaded", zap.Int("count", len(items)))
	return nil
}

// Get returns the decoded value for key, or def when the key is unknown, the repository
// cannot be reached or the stored value decodes to nil (a json "null").
func (m *Manager) Get(ctx context.Context, key string, def any) any {
	if v, ok := m.cache.Get(ctx, m.key(key)); ok {
		if v == nil {
			return def
		}
		return v
	}

	item, err := m.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.logger.Debug("config key not found", zap.String("key", key))
		} else {
			m.logger.Warn("config lookup failed", zap.String("key", key), zap.Error(err))
		}
		return def
	}

	v := m.decode(item)
	if err := m.cache.Set(ctx, m.key(key), v, m.ttl); err != nil {
		m.logger.Warn("config cache populate failed", zap.String("key", key), zap.Error(err))
	}
	if v == nil {
		return def
	}
	return v
}

// GetString returns key as a string. Non string values are stringified.
func (m *Manager) GetString(ctx context.Context, key, def string) string {
	switch v := m.Get(ctx, key, nil).(type) {
	case nil:
		return def
	case string:
		return v
	default:
		return codec.StringifyValue(v)
	}
}

// GetNumber returns key as a float64, or def when the value is not numeric.
func (m *Manager) GetNumber(ctx context.Context, key string, def float64) float64 {
	switch v := m.Get(ctx, key, nil).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// GetBoolean returns key as a bool. The strings "true" and "1" are accepted.
func (m *Manager) GetBoolean(ctx context.Context, key string, def bool) bool {
	switch v := m.Get(ctx, key, nil).(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	}
	return def
}

// GetJSON returns key as a decoded JSON document (map or slice). String values are parsed.
func (m *Manager) GetJSON(ctx context.Context, key string, def any) any {
	switch v := m.Get(ctx, key, nil).(type) {
	case map[string]any, []any:
		return v
	case string:
		var out any
		if err := json.Unmarshal([]byte(v), &out); err == nil {
			return out
		}
	}
	return def
}

// GetAs returns key converted to T, or def when missing or not convertible.
func GetAs[T any](ctx context.Context, m *Manager, key string, def T) T {
	v := m.Get(ctx, key, nil)
	if v == nil {
		return def
	}
	typed, err := cache.As[T](v)
	if err != nil {
		m.logger.Debug("config value conversion failed", zap.String("key", key), zap.Error(err))
		return def
	}
	return typed
}

// Set persists value under key and mirrors the decoded value into the cache. Existing items
// keep their type; new items are created with an inferred type, the key's category and the
// key as label. Repository failures are returned and leave the cache untouched.
func (m *Manager) Set(ctx context.Context, key string, value any) error {
	raw := codec.StringifyValue(value)

	existing, err := m.repo.FindByKey(ctx, key)
	switch {
	case err == nil:
		existing, err = m.repo.Update(ctx, key, UpdateInput{Value: &raw})
		if err != nil {
			return fmt.Errorf("dynconfig: update %s: %w", key, err)
		}
	case errors.Is(err, ErrNotFound):
		existing, err = m.repo.Create(ctx, NewItem(key, value))
		if err != nil {
			return fmt.Errorf("dynconfig: create %s: %w", key, err)
		}
	default:
		return fmt.Errorf("dynconfig: lookup %s: %w", key, err)
	}

	decoded := codec.ParseValue(raw, existing.Type)
	if err := m.cache.Set(ctx, m.key(key), decoded, m.ttl); err != nil {
		m.logger.Warn("config cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// BatchUpdate persists every change in one repository call. If that call fails the cache is
// restored to its pre-batch state: keys that were cached get their previous value back and
// keys that were not cached are removed. Restoration is best effort and only logged.
func (m *Manager) BatchUpdate(ctx context.Context, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}

	keys := make([]string, len(changes))
	values := make([]KeyValue, len(changes))
	for i, c := range changes {
		keys[i] = m.key(c.Key)
		values[i] = KeyValue{Key: c.Key, Value: codec.StringifyValue(c.Value)}
	}

	snapshot := m.snapshot(ctx, keys)

	if err := m.repo.BatchUpdateValues(ctx, values); err != nil {
		m.rollback(ctx, keys, snapshot)
		return fmt.Errorf("dynconfig: batch update: %w", err)
	}

	entries := make([]cache.Entry, len(changes))
	for i, c := range changes {
		entries[i] = cache.Entry{
			Key:   keys[i],
			Value: codec.ParseValue(values[i].Value, codec.InferValueType(c.Value)),
			TTL:   m.ttl,
		}
	}
	if err := m.cache.MSet(ctx, entries); err != nil {
		m.logger.Warn("config batch cache write failed", zap.Int("count", len(entries)), zap.Error(err))
	}
	return nil
}

// snapshot reads keys one at a time so a tiered cache backfills before the batch is written,
// never concurrently with it.
func (m *Manager) snapshot(ctx context.Context, keys []string) []cache.Result {
	out := make([]cache.Result, len(keys))
	for i, key := range keys {
		v, ok := m.cache.Get(ctx, key)
		out[i] = cache.Result{Value: v, Found: ok}
	}
	return out
}

func (m *Manager) rollback(ctx context.Context, keys []string, snapshot []cache.Result) {
	restore := make([]cache.Entry, 0, len(keys))
	for i, key := range keys {
		if snapshot[i].Found {
			restore = append(restore, cache.Entry{Key: key, Value: snapshot[i].Value, TTL: m.ttl})
			continue
		}
		if err := m.cache.Delete(ctx, key); err != nil {
			m.logger.Warn("config rollback delete failed", zap.String("key", key), zap.Error(err))
		}
	}

	if len(restore) == 0 {
		return
	}
	if err := m.cache.MSet(ctx, restore); err != nil {
		m.logger.Warn("config rollback restore failed", zap.Int("count", len(restore)), zap.Error(err))
	}
}

// Delete removes key from the repository and then from the cache.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("dynconfig: delete %s: %w", key, err)
	}
	if err := m.cache.Delete(ctx, m.key(key)); err != nil {
		m.logger.Warn("config cache delete failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// GetByCategory returns the items of category with decoded values, read from the repository.
func (m *Manager) GetByCategory(ctx context.Context, category string) ([]Resolved, error) {
	items, err := m.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("dynconfig: find category %s: %w", category, err)
	}
	out := make([]Resolved, 0, len(items))
	for _, item := range items {
		out = append(out, m.resolve(item))
	}
	return out, nil
}

// GetPublicConfigs returns a flat key to decoded value map of public items.
func (m *Manager) GetPublicConfigs(ctx context.Context) (map[string]any, error) {
	items, err := m.repo.FindPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("dynconfig: find public: %w", err)
	}
	out := make(map[string]any, len(items))
	for _, item := range items {
		out[item.Key] = m.decode(item)
	}
	return out, nil
}

// GetSystemConfig returns every item as a nested tree keyed by dotted key segments.
func (m *Manager) GetSystemConfig(ctx context.Context) (map[string]any, error) {
	items, err := m.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("dynconfig: find all: %w", err)
	}
	pairs := make([]codec.Pair, 0, len(items))
	for _, item := range items {
		pairs = append(pairs, codec.Pair{Key: item.Key, Value: m.decode(item)})
	}
	return codec.BuildNestedConfig(pairs), nil
}

// Reload clears the cache and loads every item again.
func (m *Manager) Reload(ctx context.Context) error {
	if err := m.cache.Clear(ctx); err != nil {
		return fmt.Errorf("dynconfig: clear cache: %w", err)
	}
	return m.LoadAll(ctx)
}

// IsInitialized reports whether LoadAll has completed at least once.
func (m *Manager) IsInitialized() bool {
	return m.initialized.Load()
}

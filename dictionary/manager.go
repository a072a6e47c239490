package dictionary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynconfig/cache"
)

// Manager serves dictionaries from an optional cache backed by a Repository.
//
// Cached listings live under dictionary:all, dictionary:code:{code} and
// dictionary:tree:{code}. A mutation invalidates the keys of the affected code and the
// aggregate listing, leaving other codes cached.
type Manager struct {
	repo   Repository
	cache  cache.Strategy
	keys   cache.KeySerializer
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager builds a Manager over repo.
func NewManager(repo Repository, opts ...Option) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("dictionary: repository is required")
	}

	m := &Manager{
		repo:   repo,
		keys:   cache.NewKeySerializer(DefaultNamespace),
		ttl:    DefaultTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("dictionary")
	return m, nil
}

func (m *Manager) allKey() string {
	return m.keys.SerializeKey("all")
}

func (m *Manager) codeKey(code string) string {
	return m.keys.SerializeKey("code", code)
}

func (m *Manager) treeKey(code string) string {
	return m.keys.SerializeKey("tree", code)
}

func cached[T any](ctx context.Context, m *Manager, key string, fetch cache.FetchFn[T]) (T, error) {
	if m.cache == nil {
		return fetch(ctx)
	}

	v, err := cache.GetOrFetch(ctx, m.cache, key, m.ttl, fetch)
	if errors.Is(err, cache.ErrCacheWrite) {
		m.logger.Warn("dictionary cache write failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	return v, err
}

// FindAll returns every enabled item ordered by code then sort.
func (m *Manager) FindAll(ctx context.Context) ([]Item, error) {
	items, err := cached[[]Item](ctx, m, m.allKey(), m.repo.FindAll)
	if err != nil {
		return nil, fmt.Errorf("dictionary: find all: %w", err)
	}
	return items, nil
}

// FindByCode returns the enabled items of code ordered by sort.
func (m *Manager) FindByCode(ctx context.Context, code string) ([]Item, error) {
	items, err := cached[[]Item](ctx, m, m.codeKey(code), func(ctx context.Context) ([]Item, error) {
		return m.repo.FindByCode(ctx, code)
	})
	if err != nil {
		return nil, fmt.Errorf("dictionary: find code %s: %w", code, err)
	}
	return items, nil
}

// GetTree returns the items of code linked by parent id. The flat listing is read from the
// repository, not from the cached FindByCode result.
func (m *Manager) GetTree(ctx context.Context, code string) ([]*TreeNode, error) {
	tree, err := cached[[]*TreeNode](ctx, m, m.treeKey(code), func(ctx context.Context) ([]*TreeNode, error) {
		items, err := m.repo.FindByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		return BuildTree(items), nil
	})
	if err != nil {
		return nil, fmt.Errorf("dictionary: tree %s: %w", code, err)
	}
	return tree, nil
}

// FindByID reads one item from the repository. It is never cached.
func (m *Manager) FindByID(ctx context.Context, id string) (Item, error) {
	item, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("dictionary: find %s: %w", id, err)
	}
	return item, nil
}

// LabelOf returns the label of the enabled item of code whose value is value.
func (m *Manager) LabelOf(ctx context.Context, code, value string) (string, bool) {
	items, err := m.FindByCode(ctx, code)
	if err != nil {
		m.logger.Warn("dictionary label lookup failed", zap.String("code", code), zap.Error(err))
		return "", false
	}
	for _, item := range items {
		if item.Value == value {
			return item.Label, true
		}
	}
	return "", false
}

// Create stores a new item and invalidates the caches of its code.
func (m *Manager) Create(ctx context.Context, input CreateInput) (Item, error) {
	if err := input.Validate(); err != nil {
		return Item{}, err
	}
	item, err := m.repo.Create(ctx, input)
	if err != nil {
		return Item{}, fmt.Errorf("dictionary: create: %w", err)
	}
	m.invalidate(ctx, input.Code)
	return item, nil
}

// Update changes the item id. Caches of its current code are invalidated, and of the new
// code too when the item moves.
func (m *Manager) Update(ctx context.Context, id string, input UpdateInput) (Item, error) {
	existing, err := m.FindByID(ctx, id)
	if err != nil {
		return Item{}, err
	}

	item, err := m.repo.Update(ctx, id, input)
	if err != nil {
		return Item{}, fmt.Errorf("dictionary: update %s: %w", id, err)
	}

	m.invalidate(ctx, existing.Code)
	if item.Code != existing.Code {
		m.invalidate(ctx, item.Code)
	}
	return item, nil
}

// Delete disables the item id and invalidates the caches of its code.
func (m *Manager) Delete(ctx context.Context, id string) error {
	existing, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := m.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("dictionary: delete %s: %w", id, err)
	}
	m.invalidate(ctx, existing.Code)
	return nil
}

// ClearCache empties the cache. It does nothing when caching is disabled.
func (m *Manager) ClearCache(ctx context.Context) error {
	if m.cache == nil {
		return nil
	}
	if err := m.cache.Clear(ctx); err != nil {
		return fmt.Errorf("dictionary: clear cache: %w", err)
	}
	return nil
}

func (m *Manager) invalidate(ctx context.Context, code string) {
	if m.cache == nil {
		return
	}
	for _, key := range []string{m.allKey(), m.codeKey(code), m.treeKey(code)} {
		if err := m.cache.Delete(ctx, key); err != nil {
			m.logger.Warn("dictionary cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}

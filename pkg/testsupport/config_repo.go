package testsupport

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-dynconfig/dynconfig"
)

// ConfigRepo is an in-memory dynconfig.Repository with call tracking and failure injection.
type ConfigRepo struct {
	recorder
	items map[string]dynconfig.Item
}

var _ dynconfig.Repository = (*ConfigRepo)(nil)

// NewConfigRepo returns a repository seeded with items.
func NewConfigRepo(items ...dynconfig.Item) *ConfigRepo {
	r := &ConfigRepo{
		items: make(map[string]dynconfig.Item, len(items)),
	}
	for _, item := range items {
		r.items[item.Key] = item
	}
	return r
}

// Record returns the stored item for key without counting a call.
func (r *ConfigRepo) Record(key string) (dynconfig.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[key]
	return item, ok
}

func (r *ConfigRepo) filter(keep func(dynconfig.Item) bool) []dynconfig.Item {
	out := make([]dynconfig.Item, 0, len(r.items))
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *ConfigRepo) FindAll(ctx context.Context) ([]dynconfig.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("FindAll"); err != nil {
		return nil, err
	}
	return r.filter(func(dynconfig.Item) bool { return true }), nil
}

func (r *ConfigRepo) FindByKey(ctx context.Context, key string) (dynconfig.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("FindByKey"); err != nil {
		return dynconfig.Item{}, err
	}
	item, ok := r.items[key]
	if !ok {
		return dynconfig.Item{}, fmt.Errorf("%w: %s", dynconfig.ErrNotFound, key)
	}
	return item, nil
}

func (r *ConfigRepo) FindByCategory(ctx context.Context, category string) ([]dynconfig.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("FindByCategory"); err != nil {
		return nil, err
	}
	return r.filter(func(item dynconfig.Item) bool { return item.Category == category }), nil
}

func (r *ConfigRepo) FindPublic(ctx context.Context) ([]dynconfig.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("FindPublic"); err != nil {
		return nil, err
	}
	return r.filter(func(item dynconfig.Item) bool { return item.IsPublic }), nil
}

func (r *ConfigRepo) Create(ctx context.Context, item dynconfig.Item) (dynconfig.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("Create"); err != nil {
		return dynconfig.Item{}, err
	}
	if _, exists := r.items[item.Key]; exists {
		return dynconfig.Item{}, fmt.Errorf("config key %s already exists", item.Key)
	}
	r.items[item.Key] = item
	return item, nil
}

func (r *ConfigRepo) Update(ctx context.Context, key string, input dynconfig.UpdateInput) (dynconfig.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("Update"); err != nil {
		return dynconfig.Item{}, err
	}
	item, ok := r.items[key]
	if !ok {
		return dynconfig.Item{}, fmt.Errorf("%w: %s", dynconfig.ErrNotFound, key)
	}
	input.Apply(&item)
	r.items[key] = item
	return item, nil
}

func (r *ConfigRepo) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("Delete"); err != nil {
		return err
	}
	if _, ok := r.items[key]; !ok {
		return fmt.Errorf("%w: %s", dynconfig.ErrNotFound, key)
	}
	delete(r.items, key)
	return nil
}

// BatchUpdateValues applies every value or none: an injected failure leaves the store
// untouched. Unknown keys are created with inferred defaults.
func (r *ConfigRepo) BatchUpdateValues(ctx context.Context, values []dynconfig.KeyValue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("BatchUpdateValues"); err != nil {
		return err
	}
	for _, kv := range values {
		item, ok := r.items[kv.Key]
		if !ok {
			item = dynconfig.NewItem(kv.Key, kv.Value)
		}
		item.Value = kv.Value
		r.items[kv.Key] = item
	}
	return nil
}

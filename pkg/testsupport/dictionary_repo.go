package testsupport

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/goliatone/go-dynconfig/dictionary"
)

// DictionaryRepo is an in-memory dictionary.Repository with call tracking and failure
// injection. Delete disables items like a real store would.
type DictionaryRepo struct {
	recorder
	items map[string]dictionary.Item
}

var _ dictionary.Repository = (*DictionaryRepo)(nil)

// NewDictionaryRepo returns a repository seeded with items. Items without an id get one.
func NewDictionaryRepo(items ...dictionary.Item) *DictionaryRepo {
	r := &DictionaryRepo{
		items: make(map[string]dictionary.Item, len(items)),
	}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		r.items[item.ID] = item
	}
	return r
}

// Record returns the stored item for id, enabled or not, without counting a call.
func (r *DictionaryRepo) Record(id string) (dictionary.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	return item, ok
}

func (r *DictionaryRepo) enabled(keep func(dictionary.Item) bool) []dictionary.Item {
	out := make([]dictionary.Item, 0, len(r.items))
	for _, item := range r.items {
		if item.IsEnabled && keep(item) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		if out[i].Sort != out[j].Sort {
			return out[i].Sort < out[j].Sort
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *DictionaryRepo) FindAll(ctx context.Context) ([]dictionary.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("FindAll"); err != nil {
		return nil, err
	}
	return r.enabled(func(dictionary.Item) bool { return true }), nil
}

func (r *DictionaryRepo) FindByCode(ctx context.Context, code string) ([]dictionary.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("FindByCode"); err != nil {
		return nil, err
	}
	return r.enabled(func(item dictionary.Item) bool { return item.Code == code }), nil
}

func (r *DictionaryRepo) FindByID(ctx context.Context, id string) (dictionary.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("FindByID"); err != nil {
		return dictionary.Item{}, err
	}
	item, ok := r.items[id]
	if !ok {
		return dictionary.Item{}, fmt.Errorf("%w: %s", dictionary.ErrNotFound, id)
	}
	return item, nil
}

func (r *DictionaryRepo) Create(ctx context.Context, input dictionary.CreateInput) (dictionary.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("Create"); err != nil {
		return dictionary.Item{}, err
	}
	item := dictionary.NewItem(input)
	item.ID = uuid.NewString()
	r.items[item.ID] = item
	return item, nil
}

func (r *DictionaryRepo) Update(ctx context.Context, id string, input dictionary.UpdateInput) (dictionary.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("Update"); err != nil {
		return dictionary.Item{}, err
	}
	item, ok := r.items[id]
	if !ok {
		return dictionary.Item{}, fmt.Errorf("%w: %s", dictionary.ErrNotFound, id)
	}
	input.Apply(&item)
	r.items[id] = item
	return item, nil
}

func (r *DictionaryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.track("Delete"); err != nil {
		return err
	}
	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", dictionary.ErrNotFound, id)
	}
	item.IsEnabled = false
	r.items[id] = item
	return nil
}

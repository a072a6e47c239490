package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-dynconfig/dictionary"
)

// DictionaryRepository stores dictionary items in the dictionary_items table. Deleted items
// are disabled, not removed.
type DictionaryRepository struct {
	db  *bun.DB
	now func() time.Time
}

var _ dictionary.Repository = (*DictionaryRepository)(nil)

// NewDictionaryRepository creates a repository over db.
func NewDictionaryRepository(db *bun.DB) *DictionaryRepository {
	return &DictionaryRepository{db: db, now: time.Now}
}

func (r *DictionaryRepository) list(ctx context.Context, q *bun.SelectQuery, rows *[]dictionaryRow) ([]dictionary.Item, error) {
	if err := q.Where("is_enabled = ?", true).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to query dictionary items: %w", err)
	}
	items := make([]dictionary.Item, len(*rows))
	for i := range *rows {
		items[i] = (*rows)[i].item()
	}
	return items, nil
}

// FindAll returns the enabled items ordered by code then sort.
func (r *DictionaryRepository) FindAll(ctx context.Context) ([]dictionary.Item, error) {
	var rows []dictionaryRow
	q := r.db.NewSelect().Model(&rows).Order("code ASC", "sort_order ASC")
	return r.list(ctx, q, &rows)
}

// FindByCode returns the enabled items of code ordered by sort.
func (r *DictionaryRepository) FindByCode(ctx context.Context, code string) ([]dictionary.Item, error) {
	var rows []dictionaryRow
	q := r.db.NewSelect().Model(&rows).Where("code = ?", code).Order("sort_order ASC")
	return r.list(ctx, q, &rows)
}

// FindByID returns the item id whether it is enabled or not.
func (r *DictionaryRepository) FindByID(ctx context.Context, id string) (dictionary.Item, error) {
	row := new(dictionaryRow)
	err := r.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return dictionary.Item{}, fmt.Errorf("%w: %s", dictionary.ErrNotFound, id)
	}
	if err != nil {
		return dictionary.Item{}, fmt.Errorf("failed to scan dictionary item %s: %w", id, err)
	}
	return row.item(), nil
}

// Create inserts an enabled item with a new uuid.
func (r *DictionaryRepository) Create(ctx context.Context, input dictionary.CreateInput) (dictionary.Item, error) {
	item := dictionary.NewItem(input)
	item.ID = uuid.NewString()

	row := newDictionaryRow(item)
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt

	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return dictionary.Item{}, fmt.Errorf("failed to insert dictionary item: %w", err)
	}
	return item, nil
}

// Update applies input to the item id.
func (r *DictionaryRepository) Update(ctx context.Context, id string, input dictionary.UpdateInput) (dictionary.Item, error) {
	existing := new(dictionaryRow)
	err := r.db.NewSelect().Model(existing).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return dictionary.Item{}, fmt.Errorf("%w: %s", dictionary.ErrNotFound, id)
	}
	if err != nil {
		return dictionary.Item{}, fmt.Errorf("failed to scan dictionary item %s: %w", id, err)
	}

	item := existing.item()
	input.Apply(&item)
	row := newDictionaryRow(item)
	row.CreatedAt = existing.CreatedAt
	row.UpdatedAt = r.now()

	if _, err := r.db.NewUpdate().Model(row).WherePK().Exec(ctx); err != nil {
		return dictionary.Item{}, fmt.Errorf("failed to update dictionary item %s: %w", id, err)
	}
	return item, nil
}

// Delete disables the item id.
func (r *DictionaryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.NewUpdate().
		Model((*dictionaryRow)(nil)).
		Set("is_enabled = ?", false).
		Set("updated_at = ?", r.now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to disable dictionary item %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", dictionary.ErrNotFound, id)
	}
	return nil
}

package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynconfig/dynconfig"
)

// ConfigRepository stores configuration items in the config_items table.
type ConfigRepository struct {
	db     *bun.DB
	logger *zap.Logger
	now    func() time.Time
}

var _ dynconfig.Repository = (*ConfigRepository)(nil)

// NewConfigRepository creates a repository over db.
func NewConfigRepository(db *bun.DB, logger *zap.Logger) *ConfigRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigRepository{
		db:     db,
		logger: logger.Named("bunstore.config"),
		now:    time.Now,
	}
}

func (r *ConfigRepository) list(ctx context.Context, where func(*bun.SelectQuery) *bun.SelectQuery) ([]dynconfig.Item, error) {
	var rows []configRow
	q := r.db.NewSelect().Model(&rows).Order("sort_order ASC", "config_key ASC")
	if where != nil {
		q = where(q)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to query config items: %w", err)
	}

	items := make([]dynconfig.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].item()
	}
	return items, nil
}

func (r *ConfigRepository) find(ctx context.Context, db bun.IDB, key string) (*configRow, error) {
	row := new(configRow)
	err := db.NewSelect().Model(row).Where("config_key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", dynconfig.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan config item %s: %w", key, err)
	}
	return row, nil
}

// FindAll returns every item ordered by sort then key.
func (r *ConfigRepository) FindAll(ctx context.Context) ([]dynconfig.Item, error) {
	return r.list(ctx, nil)
}

// FindByKey returns the item stored under key.
func (r *ConfigRepository) FindByKey(ctx context.Context, key string) (dynconfig.Item, error) {
	row, err := r.find(ctx, r.db, key)
	if err != nil {
		return dynconfig.Item{}, err
	}
	return row.item(), nil
}

// FindByCategory returns the items of category.
func (r *ConfigRepository) FindByCategory(ctx context.Context, category string) ([]dynconfig.Item, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("category = ?", category)
	})
}

// FindPublic returns the items flagged public.
func (r *ConfigRepository) FindPublic(ctx context.Context) ([]dynconfig.Item, error) {
	return r.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("is_public = ?", true)
	})
}

// Create inserts item.
func (r *ConfigRepository) Create(ctx context.Context, item dynconfig.Item) (dynconfig.Item, error) {
	row := newConfigRow(item)
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt

	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return dynconfig.Item{}, fmt.Errorf("failed to insert config item %s: %w", item.Key, err)
	}
	return row.item(), nil
}

// Update applies input to the item stored under key.
func (r *ConfigRepository) Update(ctx context.Context, key string, input dynconfig.UpdateInput) (dynconfig.Item, error) {
	row, err := r.find(ctx, r.db, key)
	if err != nil {
		return dynconfig.Item{}, err
	}

	item := row.item()
	input.Apply(&item)
	updated := newConfigRow(item)
	updated.CreatedAt = row.CreatedAt
	updated.UpdatedAt = r.now()

	res, err := r.db.NewUpdate().Model(updated).WherePK().Exec(ctx)
	if err != nil {
		return dynconfig.Item{}, fmt.Errorf("failed to update config item %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return dynconfig.Item{}, fmt.Errorf("%w: %s", dynconfig.ErrNotFound, key)
	}
	return item, nil
}

// Delete removes the item stored under key.
func (r *ConfigRepository) Delete(ctx context.Context, key string) error {
	res, err := r.db.NewDelete().
		Model((*configRow)(nil)).
		Where("config_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete config item %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", dynconfig.ErrNotFound, key)
	}
	return nil
}

// BatchUpdateValues writes every value in one transaction. Keys without a row are created
// with an inferred type, the key's category and the key as label.
func (r *ConfigRepository) BatchUpdateValues(ctx context.Context, values []dynconfig.KeyValue) error {
	if len(values) == 0 {
		return nil
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := r.now()
		for _, kv := range values {
			res, err := tx.NewUpdate().
				Model((*configRow)(nil)).
				Set("config_value = ?", kv.Value).
				Set("updated_at = ?", now).
				Where("config_key = ?", kv.Key).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to update config item %s: %w", kv.Key, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				continue
			}

			row := newConfigRow(dynconfig.NewItem(kv.Key, kv.Value))
			row.CreatedAt = now
			row.UpdatedAt = now
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert config item %s: %w", kv.Key, err)
			}
			r.logger.Debug("config item created by batch update", zap.String("key", kv.Key))
		}
		return nil
	})
}

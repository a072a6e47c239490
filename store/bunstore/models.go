package bunstore

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-dynconfig/codec"
	"github.com/goliatone/go-dynconfig/dictionary"
	"github.com/goliatone/go-dynconfig/dynconfig"
)

type configRow struct {
	bun.BaseModel `bun:"table:config_items"`

	Key          string    `bun:"config_key,pk"`
	Value        string    `bun:"config_value,notnull"`
	Type         string    `bun:"value_type,notnull"`
	Category     string    `bun:"category,notnull"`
	Label        string    `bun:"label,notnull"`
	Description  string    `bun:"description"`
	IsPublic     bool      `bun:"is_public,notnull"`
	IsRequired   bool      `bun:"is_required,notnull"`
	DefaultValue string    `bun:"default_value"`
	Options      string    `bun:"options"`
	Sort         int       `bun:"sort_order,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func newConfigRow(item dynconfig.Item) *configRow {
	return &configRow{
		Key:          item.Key,
		Value:        item.Value,
		Type:         string(item.Type),
		Category:     item.Category,
		Label:        item.Label,
		Description:  item.Description,
		IsPublic:     item.IsPublic,
		IsRequired:   item.IsRequired,
		DefaultValue: item.DefaultValue,
		Options:      item.Options,
		Sort:         item.Sort,
	}
}

func (r *configRow) item() dynconfig.Item {
	return dynconfig.Item{
		Key:          r.Key,
		Value:        r.Value,
		Type:         codec.ValueType(r.Type),
		Category:     r.Category,
		Label:        r.Label,
		Description:  r.Description,
		IsPublic:     r.IsPublic,
		IsRequired:   r.IsRequired,
		DefaultValue: r.DefaultValue,
		Options:      r.Options,
		Sort:         r.Sort,
	}
}

type dictionaryRow struct {
	bun.BaseModel `bun:"table:dictionary_items"`

	ID        string         `bun:"id,pk"`
	Code      string         `bun:"code,notnull"`
	ParentID  string         `bun:"parent_id,nullzero"`
	Label     string         `bun:"label,notnull"`
	Value     string         `bun:"value,notnull"`
	Kind      string         `bun:"kind,notnull"`
	Sort      int            `bun:"sort_order,notnull"`
	IsEnabled bool           `bun:"is_enabled,notnull"`
	Extra     map[string]any `bun:"extra"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
	UpdatedAt time.Time      `bun:"updated_at,notnull"`
}

func newDictionaryRow(item dictionary.Item) *dictionaryRow {
	return &dictionaryRow{
		ID:        item.ID,
		Code:      item.Code,
		ParentID:  item.ParentID,
		Label:     item.Label,
		Value:     item.Value,
		Kind:      string(item.Type),
		Sort:      item.Sort,
		IsEnabled: item.IsEnabled,
		Extra:     item.Extra,
	}
}

func (r *dictionaryRow) item() dictionary.Item {
	return dictionary.Item{
		ID:        r.ID,
		Code:      r.Code,
		ParentID:  r.ParentID,
		Label:     r.Label,
		Value:     r.Value,
		Type:      dictionary.Kind(r.Kind),
		Sort:      r.Sort,
		IsEnabled: r.IsEnabled,
		Extra:     r.Extra,
	}
}

// CreateSchema creates the tables and indexes used by the repositories.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	models := []any{(*configRow)(nil), (*dictionaryRow)(nil)}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("bunstore: create table: %w", err)
		}
	}

	indexes := []struct {
		name   string
		model  any
		column []string
	}{
		{"idx_config_items_category", (*configRow)(nil), []string{"category"}},
		{"idx_dictionary_items_code", (*dictionaryRow)(nil), []string{"code", "sort_order"}},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.column...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("bunstore: create index %s: %w", idx.name, err)
		}
	}
	return nil
}

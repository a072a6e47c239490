package dynconfig

import (
	"errors"

	"github.com/goliatone/go-dynconfig/codec"
)

// ErrNotFound is returned by repositories when no item matches the requested key.
var ErrNotFound = errors.New("dynconfig: config item not found")

// Item is a persisted configuration entry. Value always holds the string form; Type tells
// how to decode it.
type Item struct {
	Key          string          `json:"key"`
	Value        string          `json:"value"`
	Type         codec.ValueType `json:"type"`
	Category     string          `json:"category"`
	Label        string          `json:"label"`
	Description  string          `json:"description,omitempty"`
	IsPublic     bool            `json:"isPublic"`
	IsRequired   bool            `json:"isRequired"`
	DefaultValue string          `json:"defaultValue,omitempty"`
	Options      string          `json:"options,omitempty"`
	Sort         int             `json:"sort"`
}

// Resolved is an Item with its value decoded.
type Resolved struct {
	Key          string          `json:"key"`
	Value        any             `json:"value"`
	Type         codec.ValueType `json:"type"`
	Category     string          `json:"category"`
	Label        string          `json:"label"`
	Description  string          `json:"description,omitempty"`
	IsPublic     bool            `json:"isPublic"`
	IsRequired   bool            `json:"isRequired"`
	DefaultValue any             `json:"defaultValue,omitempty"`
	Options      []codec.Option  `json:"options,omitempty"`
	Sort         int             `json:"sort"`
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Value        *string
	Type         *codec.ValueType
	Category     *string
	Label        *string
	Description  *string
	IsPublic     *bool
	IsRequired   *bool
	DefaultValue *string
	Options      *string
	Sort         *int
}

// Apply copies the set fields of in onto item.
func (in UpdateInput) Apply(item *Item) {
	if in.Value != nil {
		item.Value = *in.Value
	}
	if in.Type != nil {
		item.Type = *in.Type
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.Label != nil {
		item.Label = *in.Label
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.IsPublic != nil {
		item.IsPublic = *in.IsPublic
	}
	if in.IsRequired != nil {
		item.IsRequired = *in.IsRequired
	}
	if in.DefaultValue != nil {
		item.DefaultValue = *in.DefaultValue
	}
	if in.Options != nil {
		item.Options = *in.Options
	}
	if in.Sort != nil {
		item.Sort = *in.Sort
	}
}

// KeyValue is one entry of a repository batch update.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Change is one entry of a Manager batch update.
type Change struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// NewItem returns the item created for a key that has no row yet: the type is inferred
// from value, the category is the key's first segment and the label is the key itself.
func NewItem(key string, value any) Item {
	return Item{
		Key:      key,
		Value:    codec.StringifyValue(value),
		Type:     codec.InferValueType(value),
		Category: codec.ExtractCategory(key),
		Label:    key,
	}
}

package dictionary

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when no item matches the requested id.
var ErrNotFound = errors.New("dictionary: item not found")

// Kind describes how the items of a dictionary code relate to each other.
type Kind string

const (
	KindEnum Kind = "enum"
	KindTree Kind = "tree"
	KindList Kind = "list"
)

// Item is one selectable entry of a dictionary.
type Item struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	ParentID  string         `json:"parentId,omitempty"`
	Label     string         `json:"label"`
	Value     string         `json:"value"`
	Type      Kind           `json:"type"`
	Sort      int            `json:"sort"`
	IsEnabled bool           `json:"isEnabled"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// TreeNode is an Item linked to its children.
type TreeNode struct {
	Item
	Children []*TreeNode `json:"children"`
}

// CreateInput holds the fields of a new item. Items are created enabled.
type CreateInput struct {
	Code     string         `json:"code"`
	ParentID string         `json:"parentId,omitempty"`
	Label    string         `json:"label"`
	Value    string         `json:"value"`
	Type     Kind           `json:"type"`
	Sort     int            `json:"sort"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Validate checks the required fields.
func (in CreateInput) Validate() error {
	if in.Code == "" {
		return fmt.Errorf("dictionary: code is required")
	}
	if in.Value == "" {
		return fmt.Errorf("dictionary: value is required")
	}
	switch in.Type {
	case "", KindEnum, KindTree, KindList:
		return nil
	default:
		return fmt.Errorf("dictionary: unknown type %q", in.Type)
	}
}

// UpdateInput carries a partial update. Nil fields are left unchanged; a non nil Extra
// replaces the stored map.
type UpdateInput struct {
	Code      *string
	ParentID  *string
	Label     *string
	Value     *string
	Type      *Kind
	Sort      *int
	IsEnabled *bool
	Extra     map[string]any
}

// Apply copies the set fields of in onto item.
func (in UpdateInput) Apply(item *Item) {
	if in.Code != nil {
		item.Code = *in.Code
	}
	if in.ParentID != nil {
		item.ParentID = *in.ParentID
	}
	if in.Label != nil {
		item.Label = *in.Label
	}
	if in.Value != nil {
		item.Value = *in.Value
	}
	if in.Type != nil {
		item.Type = *in.Type
	}
	if in.Sort != nil {
		item.Sort = *in.Sort
	}
	if in.IsEnabled != nil {
		item.IsEnabled = *in.IsEnabled
	}
	if in.Extra != nil {
		item.Extra = in.Extra
	}
}

// NewItem builds an enabled item from in. The id is left to the repository.
func NewItem(in CreateInput) Item {
	kind := in.Type
	if kind == "" {
		kind = KindEnum
	}
	return Item{
		Code:      in.Code,
		ParentID:  in.ParentID,
		Label:     in.Label,
		Value:     in.Value,
		Type:      kind,
		Sort:      in.Sort,
		IsEnabled: true,
		Extra:     in.Extra,
	}
}

package dictionary

import "context"

// Repository is the durable store behind a Manager.
//
// FindAll returns enabled items ordered by code then sort; FindByCode returns the enabled
// items of one code ordered by sort. FindByID returns disabled items too. Delete is a soft
// delete that disables the item. FindByID, Update and Delete return an error matching
// ErrNotFound for unknown ids.
type Repository interface {
	FindAll(ctx context.Context) ([]Item, error)
	FindByCode(ctx context.Context, code string) ([]Item, error)
	FindByID(ctx context.Context, id string) (Item, error)
	Create(ctx context.Context, input CreateInput) (Item, error)
	Update(ctx context.Context, id string, input UpdateInput) (Item, error)
	Delete(ctx context.Context, id string) error
}

package dynconfig

import "context"

// Repository is the durable store behind a Manager.
//
// FindByKey, Update and Delete return an error matching ErrNotFound when the key does not
// exist. BatchUpdateValues must be all-or-nothing when the store supports transactions, and
// creates missing keys with inferred defaults instead of failing the batch.
type Repository interface {
	FindAll(ctx context.Context) ([]Item, error)
	FindByKey(ctx context.Context, key string) (Item, error)
	FindByCategory(ctx context.Context, category string) ([]Item, error)
	FindPublic(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, key string, input UpdateInput) (Item, error)
	Delete(ctx context.Context, key string) error
	BatchUpdateValues(ctx context.Context, values []KeyValue) error
}

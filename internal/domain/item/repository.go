package item

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("item not found")

// Repository holds the local snapshot of one kind's items, versioned the same
// way the roster snapshot is.
type Repository interface {
	List(ctx context.Context, kind Kind) ([]Item, uint64, error)
	Get(ctx context.Context, kind Kind, id string) (Item, error)
	Upsert(ctx context.Context, it Item) (uint64, error)
	Delete(ctx context.Context, kind Kind, id string) (uint64, error)
	Replace(ctx context.Context, kind Kind, items []Item) (uint64, error)
	ReplaceIfVersion(ctx context.Context, kind Kind, items []Item, version uint64) (bool, error)
}

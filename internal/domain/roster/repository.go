package roster

import "context"

// Repository holds the local snapshot of the confirmation list. Versions
// increase on every write so refreshes can detect concurrent mutations.
type Repository interface {
	Get(ctx context.Context) (List, uint64, error)
	Add(ctx context.Context, name string) (uint64, error)
	Remove(ctx context.Context, name string) (uint64, error)
	Replace(ctx context.Context, list List) (uint64, error)
	// ReplaceIfVersion swaps the snapshot only when the version still
	// matches, reporting whether the swap happened.
	ReplaceIfVersion(ctx context.Context, list List, version uint64) (bool, error)
}

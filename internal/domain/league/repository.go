package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	// Upsert inserts a new league or updates the row with the same code in
	// place. The bool reports whether a row was inserted.
	Upsert(ctx context.Context, l League) (League, bool, error)
	GetByCode(ctx context.Context, code string) (League, bool, error)
	List(ctx context.Context) ([]League, error)
}

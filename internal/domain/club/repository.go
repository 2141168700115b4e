package club

import "context"

// Repository describes club persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, c Club) (Club, bool, error)
	GetByName(ctx context.Context, name string) (Club, bool, error)
	List(ctx context.Context) ([]Club, error)
	// EnsureLeague writes the (club, league) association row if missing.
	// Existing pairs are no-ops; the bool reports whether a row was added.
	EnsureLeague(ctx context.Context, clubID, leagueID int64) (bool, error)
	LeaguePairs(ctx context.Context) ([]LeagueAssociation, error)
}

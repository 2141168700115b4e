package series

import "context"

// Repository describes series persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, s Series) (Series, bool, error)
	GetByName(ctx context.Context, name string) (Series, bool, error)
	List(ctx context.Context) ([]Series, error)
	EnsureLeague(ctx context.Context, seriesID, leagueID int64) (bool, error)
	LeaguePairs(ctx context.Context) ([]LeagueAssociation, error)
}

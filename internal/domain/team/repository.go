package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, t Team) (Team, bool, error)
	GetByTriple(ctx context.Context, clubID, seriesID, leagueID int64) (Team, bool, error)
	List(ctx context.Context) ([]Team, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]Team, error)
	ListDetailed(ctx context.Context) ([]Detail, error)
}

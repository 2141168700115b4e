package match

import "context"

// Repository describes match persistence needs from use cases.
type Repository interface {
	// Upsert writes the match keyed by source key when present, content key
	// otherwise. A row matching either key is updated in place.
	Upsert(ctx context.Context, m Match) (Match, bool, error)
	List(ctx context.Context) ([]Match, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]Match, error)
	// UpdateTeamRefs repoints the home/away team references; 0 clears one.
	UpdateTeamRefs(ctx context.Context, matchID, homeTeamID, awayTeamID int64) error
}

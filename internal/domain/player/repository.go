package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, p Player) (Player, bool, error)
	GetByExternalID(ctx context.Context, externalID string, leagueID int64) (Player, bool, error)
	List(ctx context.Context) ([]Player, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]Player, error)
	// UpdateTeamRef repoints a player's team assignment; teamID 0 clears it.
	UpdateTeamRef(ctx context.Context, playerID, teamID int64) error
}

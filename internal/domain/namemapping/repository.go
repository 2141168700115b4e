package namemapping

import "context"

// Repository describes name-mapping persistence needs from use cases.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Mapping, error)
	Add(ctx context.Context, m Mapping) (Mapping, error)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/leaguesync/internal/domain/player"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db DB
}

func NewPlayerRepository(db DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Upsert is keyed on the externally issued identifier within a league. Zero
// assignment IDs are stored as NULL rather than dangling zeroes.
func (r *PlayerRepository) Upsert(ctx context.Context, p player.Player) (player.Player, bool, error) {
	query, args, err := qb.InsertModel("players",
		playerInsertModel{
			ExternalID: p.ExternalID,
			LeagueID:   p.LeagueID,
			TeamID:     nullableInt64(p.TeamID),
			ClubID:     nullableInt64(p.ClubID),
			SeriesID:   nullableInt64(p.SeriesID),
			Name:       p.Name,
			Rating:     p.Rating,
		},
		"ON CONFLICT (external_id, league_id) DO UPDATE SET "+
			"team_id = EXCLUDED.team_id, "+
			"club_id = EXCLUDED.club_id, "+
			"series_id = EXCLUDED.series_id, "+
			"name = EXCLUDED.name, "+
			"rating = EXCLUDED.rating, "+
			"updated_at = now()",
		"id", upsertOutcome,
	)
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build upsert player query: %w", err)
	}

	var result upsertResult
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		return player.Player{}, false, fmt.Errorf("upsert player %s: %w", p.ExternalID, err)
	}

	p.ID = result.ID
	return p, result.Inserted, nil
}

func (r *PlayerRepository) GetByExternalID(ctx context.Context, externalID string, leagueID int64) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(
			qb.Eq("external_id", externalID),
			qb.Eq("league_id", leagueID),
		).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by external id: %w", err)
	}

	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	return r.list(ctx, nil)
}

func (r *PlayerRepository) ListByLeague(ctx context.Context, leagueID int64) ([]player.Player, error) {
	return r.list(ctx, []qb.Condition{qb.Eq("league_id", leagueID)})
}

func (r *PlayerRepository) list(ctx context.Context, conditions []qb.Condition) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		Where(conditions...).
		OrderBy("league_id", "external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}

	return out, nil
}

func (r *PlayerRepository) UpdateTeamRef(ctx context.Context, playerID, teamID int64) error {
	query, args, err := qb.Update("players").
		Set("team_id", nullableInt64(teamID)).
		SetExpr("updated_at", "now()").
		Where(qb.Eq("id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player team query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update player %d team ref: %w", playerID, err)
	}

	return nil
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		LeagueID:   row.LeagueID,
		TeamID:     nullInt64ToInt64(row.TeamID),
		ClubID:     nullInt64ToInt64(row.ClubID),
		SeriesID:   nullInt64ToInt64(row.SeriesID),
		Name:       row.Name,
		Rating:     row.Rating,
	}
}

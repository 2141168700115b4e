package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/leaguesync/internal/domain/club"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

type ClubRepository struct {
	db DB
}

func NewClubRepository(db DB) *ClubRepository {
	return &ClubRepository{db: db}
}

// Upsert keeps the surrogate ID for an existing club name and refreshes the
// address only when the incoming value is non-empty, so a snapshot missing
// address data never wipes a known one.
func (r *ClubRepository) Upsert(ctx context.Context, c club.Club) (club.Club, bool, error) {
	query, args, err := qb.InsertModel("clubs",
		clubInsertModel{Name: c.Name, Address: c.Address},
		"ON CONFLICT (name) DO UPDATE SET "+
			"address = CASE WHEN EXCLUDED.address <> '' THEN EXCLUDED.address ELSE clubs.address END, "+
			"updated_at = now()",
		"id", upsertOutcome,
	)
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build upsert club query: %w", err)
	}

	var result upsertResult
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		return club.Club{}, false, fmt.Errorf("upsert club %s: %w", c.Name, err)
	}

	c.ID = result.ID
	return c, result.Inserted, nil
}

func (r *ClubRepository) GetByName(ctx context.Context, name string) (club.Club, bool, error) {
	query, args, err := qb.Select("*").From("clubs").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build select club query: %w", err)
	}

	var row clubTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("select club by name: %w", err)
	}

	return club.Club{ID: row.ID, Name: row.Name, Address: row.Address}, true, nil
}

func (r *ClubRepository) List(ctx context.Context) ([]club.Club, error) {
	query, args, err := qb.Select("*").From("clubs").OrderBy("name").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list clubs query: %w", err)
	}

	var rows []clubTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select clubs: %w", err)
	}

	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, club.Club{ID: row.ID, Name: row.Name, Address: row.Address})
	}

	return out, nil
}

func (r *ClubRepository) EnsureLeague(ctx context.Context, clubID, leagueID int64) (bool, error) {
	query, args, err := qb.InsertInto("club_leagues").
		Columns("club_id", "league_id").
		Values(clubID, leagueID).
		Suffix("ON CONFLICT (club_id, league_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build ensure club league query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("ensure club league (%d, %d): %w", clubID, leagueID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure club league rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *ClubRepository) LeaguePairs(ctx context.Context) ([]club.LeagueAssociation, error) {
	query, args, err := qb.Select("club_id", "league_id").From("club_leagues").
		OrderBy("club_id", "league_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list club leagues query: %w", err)
	}

	var rows []clubLeagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select club leagues: %w", err)
	}

	out := make([]club.LeagueAssociation, 0, len(rows))
	for _, row := range rows {
		out = append(out, club.LeagueAssociation{ClubID: row.ClubID, LeagueID: row.LeagueID})
	}

	return out, nil
}

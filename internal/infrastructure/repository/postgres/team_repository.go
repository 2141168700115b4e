package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/leaguesync/internal/domain/team"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

type TeamRepository struct {
	db DB
}

func NewTeamRepository(db DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Upsert is keyed on the (club, series, league) triple. The surrogate ID of
// an existing triple is never reassigned; display name and alias refresh on
// every run.
func (r *TeamRepository) Upsert(ctx context.Context, t team.Team) (team.Team, bool, error) {
	query, args, err := qb.InsertModel("teams",
		teamInsertModel{
			ClubID:      t.ClubID,
			SeriesID:    t.SeriesID,
			LeagueID:    t.LeagueID,
			DisplayName: t.DisplayName,
			Alias:       t.Alias,
		},
		"ON CONFLICT (club_id, series_id, league_id) DO UPDATE SET "+
			"display_name = EXCLUDED.display_name, "+
			"alias = CASE WHEN EXCLUDED.alias <> '' THEN EXCLUDED.alias ELSE teams.alias END, "+
			"updated_at = now()",
		"id", upsertOutcome,
	)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build upsert team query: %w", err)
	}

	var result upsertResult
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		return team.Team{}, false, fmt.Errorf("upsert team %s: %w", t.DisplayName, err)
	}

	t.ID = result.ID
	return t, result.Inserted, nil
}

func (r *TeamRepository) GetByTriple(ctx context.Context, clubID, seriesID, leagueID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("club_id", clubID),
			qb.Eq("series_id", seriesID),
			qb.Eq("league_id", leagueID),
		).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by triple: %w", err)
	}

	return teamFromRow(row), true, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	return r.list(ctx, nil)
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]team.Team, error) {
	return r.list(ctx, []qb.Condition{qb.Eq("league_id", leagueID)})
}

func (r *TeamRepository) list(ctx context.Context, conditions []qb.Condition) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(conditions...).
		OrderBy("league_id", "series_id", "club_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}

	return out, nil
}

func (r *TeamRepository) ListDetailed(ctx context.Context) ([]team.Detail, error) {
	query, args, err := qb.Select(
		"t.id", "t.club_id", "t.series_id", "t.league_id",
		"t.display_name", "t.alias", "t.created_at", "t.updated_at",
		"c.name AS club_name",
		"s.name AS series_name",
		"l.code AS league_code",
	).From("teams t "+
		"JOIN clubs c ON c.id = t.club_id "+
		"JOIN series s ON s.id = t.series_id "+
		"JOIN leagues l ON l.id = t.league_id").
		OrderBy("l.code", "s.name", "c.name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list detailed teams query: %w", err)
	}

	var rows []teamDetailTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select detailed teams: %w", err)
	}

	out := make([]team.Detail, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Detail{
			Team:       teamFromRow(row.teamTableModel),
			ClubName:   row.ClubName,
			SeriesName: row.SeriesName,
			LeagueCode: row.LeagueCode,
		})
	}

	return out, nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:          row.ID,
		ClubID:      row.ClubID,
		SeriesID:    row.SeriesID,
		LeagueID:    row.LeagueID,
		DisplayName: row.DisplayName,
		Alias:       row.Alias,
	}
}

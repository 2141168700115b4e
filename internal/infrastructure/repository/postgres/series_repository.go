package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/leaguesync/internal/domain/series"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

type SeriesRepository struct {
	db DB
}

func NewSeriesRepository(db DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

func (r *SeriesRepository) Upsert(ctx context.Context, s series.Series) (series.Series, bool, error) {
	query, args, err := qb.InsertModel("series",
		seriesInsertModel{Name: s.Name},
		"ON CONFLICT (name) DO UPDATE SET updated_at = now()",
		"id", upsertOutcome,
	)
	if err != nil {
		return series.Series{}, false, fmt.Errorf("build upsert series query: %w", err)
	}

	var result upsertResult
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		return series.Series{}, false, fmt.Errorf("upsert series %s: %w", s.Name, err)
	}

	s.ID = result.ID
	return s, result.Inserted, nil
}

func (r *SeriesRepository) GetByName(ctx context.Context, name string) (series.Series, bool, error) {
	query, args, err := qb.Select("*").From("series").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return series.Series{}, false, fmt.Errorf("build select series query: %w", err)
	}

	var row seriesTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return series.Series{}, false, nil
		}
		return series.Series{}, false, fmt.Errorf("select series by name: %w", err)
	}

	return series.Series{ID: row.ID, Name: row.Name}, true, nil
}

func (r *SeriesRepository) List(ctx context.Context) ([]series.Series, error) {
	query, args, err := qb.Select("*").From("series").OrderBy("name").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list series query: %w", err)
	}

	var rows []seriesTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select series: %w", err)
	}

	out := make([]series.Series, 0, len(rows))
	for _, row := range rows {
		out = append(out, series.Series{ID: row.ID, Name: row.Name})
	}

	return out, nil
}

func (r *SeriesRepository) EnsureLeague(ctx context.Context, seriesID, leagueID int64) (bool, error) {
	query, args, err := qb.InsertInto("series_leagues").
		Columns("series_id", "league_id").
		Values(seriesID, leagueID).
		Suffix("ON CONFLICT (series_id, league_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build ensure series league query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("ensure series league (%d, %d): %w", seriesID, leagueID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ensure series league rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *SeriesRepository) LeaguePairs(ctx context.Context) ([]series.LeagueAssociation, error) {
	query, args, err := qb.Select("series_id", "league_id").From("series_leagues").
		OrderBy("series_id", "league_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list series leagues query: %w", err)
	}

	var rows []seriesLeagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select series leagues: %w", err)
	}

	out := make([]series.LeagueAssociation, 0, len(rows))
	for _, row := range rows {
		out = append(out, series.LeagueAssociation{SeriesID: row.SeriesID, LeagueID: row.LeagueID})
	}

	return out, nil
}

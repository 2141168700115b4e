package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/leaguesync/internal/domain/league"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db DB
}

func NewLeagueRepository(db DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Upsert(ctx context.Context, l league.League) (league.League, bool, error) {
	query, args, err := qb.InsertModel("leagues",
		leagueInsertModel{Code: l.Code, Name: l.Name},
		"ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = now()",
		"id", upsertOutcome,
	)
	if err != nil {
		return league.League{}, false, fmt.Errorf("build upsert league query: %w", err)
	}

	var result upsertResult
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		return league.League{}, false, fmt.Errorf("upsert league %s: %w", l.Code, err)
	}

	l.ID = result.ID
	return l, result.Inserted, nil
}

func (r *LeagueRepository) GetByCode(ctx context.Context, code string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("code", code)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build select league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("select league by code: %w", err)
	}

	return league.League{ID: row.ID, Code: row.Code, Name: row.Name}, true, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").OrderBy("code").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.League{ID: row.ID, Code: row.Code, Name: row.Name})
	}

	return out, nil
}

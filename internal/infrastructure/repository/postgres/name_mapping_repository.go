package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/leaguesync/internal/domain/namemapping"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

type NameMappingRepository struct {
	db DB
}

func NewNameMappingRepository(db DB) *NameMappingRepository {
	return &NameMappingRepository{db: db}
}

func (r *NameMappingRepository) ListByLeague(ctx context.Context, leagueID int64) ([]namemapping.Mapping, error) {
	query, args, err := qb.Select("*").From("name_mappings").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("source_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list name mappings query: %w", err)
	}

	var rows []nameMappingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select name mappings: %w", err)
	}

	out := make([]namemapping.Mapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, namemapping.Mapping{
			ID:            row.ID,
			LeagueID:      row.LeagueID,
			SourceName:    row.SourceName,
			CanonicalName: row.CanonicalName,
			CreatedAt:     row.CreatedAt,
		})
	}

	return out, nil
}

func (r *NameMappingRepository) Add(ctx context.Context, m namemapping.Mapping) (namemapping.Mapping, error) {
	query, args, err := qb.InsertModel("name_mappings",
		nameMappingInsertModel{
			LeagueID:      m.LeagueID,
			SourceName:    m.SourceName,
			CanonicalName: m.CanonicalName,
		},
		"ON CONFLICT (league_id, source_name) DO UPDATE SET canonical_name = EXCLUDED.canonical_name",
		"id",
	)
	if err != nil {
		return namemapping.Mapping{}, fmt.Errorf("build insert name mapping query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return namemapping.Mapping{}, fmt.Errorf("insert name mapping %s: %w", m.SourceName, err)
	}

	m.ID = id
	return m, nil
}

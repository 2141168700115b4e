package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/leaguesync/internal/domain/match"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

type MatchRepository struct {
	db DB
}

func NewMatchRepository(db DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Upsert resolves identity in two steps inside one transaction: a row with
// the same normalized source key is updated in place; otherwise the insert
// conflicts on the content key, which also adopts a source key onto a row
// first imported without one.
func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) (match.Match, bool, error) {
	playerIDs, err := sonic.MarshalString(m.PlayerExternalIDs)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("encode match player ids: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("begin upsert match tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if m.SourceKey != "" {
		updated, found, err := r.updateBySourceKey(ctx, tx, m, playerIDs)
		if err != nil {
			return match.Match{}, false, err
		}
		if found {
			if err := tx.Commit(); err != nil {
				return match.Match{}, false, fmt.Errorf("commit upsert match tx: %w", err)
			}
			return updated, false, nil
		}
	}

	query, args, err := qb.InsertModel("matches",
		matchInsertModel{
			LeagueID:     m.LeagueID,
			ContentKey:   m.ContentKey,
			SourceKey:    nullableString(m.SourceKey),
			MatchDate:    m.Date,
			HomeTeamID:   nullableInt64(m.HomeTeamID),
			AwayTeamID:   nullableInt64(m.AwayTeamID),
			HomeTeamName: m.HomeTeamName,
			AwayTeamName: m.AwayTeamName,
			PlayerIDs:    playerIDs,
			Score:        m.Score,
			ReviewFlag:   m.ReviewFlag,
		},
		"ON CONFLICT (league_id, content_key) DO UPDATE SET "+
			"source_key = COALESCE(EXCLUDED.source_key, matches.source_key), "+
			"match_date = EXCLUDED.match_date, "+
			"home_team_id = EXCLUDED.home_team_id, "+
			"away_team_id = EXCLUDED.away_team_id, "+
			"home_team_name = EXCLUDED.home_team_name, "+
			"away_team_name = EXCLUDED.away_team_name, "+
			"player_external_ids = EXCLUDED.player_external_ids, "+
			"score = EXCLUDED.score, "+
			"review_flag = EXCLUDED.review_flag, "+
			"updated_at = now()",
		"id", upsertOutcome,
	)
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build upsert match query: %w", err)
	}

	var result upsertResult
	if err := tx.GetContext(ctx, &result, query, args...); err != nil {
		return match.Match{}, false, fmt.Errorf("upsert match %s: %w", m.ContentKey, err)
	}

	if err := tx.Commit(); err != nil {
		return match.Match{}, false, fmt.Errorf("commit upsert match tx: %w", err)
	}

	m.ID = result.ID
	return m, result.Inserted, nil
}

func (r *MatchRepository) updateBySourceKey(ctx context.Context, tx *sqlx.Tx, m match.Match, playerIDs string) (match.Match, bool, error) {
	query, args, err := qb.Update("matches").
		Set("content_key", m.ContentKey).
		Set("match_date", m.Date).
		Set("home_team_id", nullableInt64(m.HomeTeamID)).
		Set("away_team_id", nullableInt64(m.AwayTeamID)).
		Set("home_team_name", m.HomeTeamName).
		Set("away_team_name", m.AwayTeamName).
		Set("player_external_ids", playerIDs).
		Set("score", m.Score).
		Set("review_flag", m.ReviewFlag).
		SetExpr("updated_at", "now()").
		Where(
			qb.Eq("league_id", m.LeagueID),
			qb.Eq("source_key", m.SourceKey),
		).
		Returning("id").
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build update match by source key query: %w", err)
	}

	var id int64
	if err := tx.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("update match by source key: %w", err)
	}

	m.ID = id
	return m, true, nil
}

func (r *MatchRepository) List(ctx context.Context) ([]match.Match, error) {
	return r.list(ctx, nil)
}

func (r *MatchRepository) ListByLeague(ctx context.Context, leagueID int64) ([]match.Match, error) {
	return r.list(ctx, []qb.Condition{qb.Eq("league_id", leagueID)})
}

func (r *MatchRepository) list(ctx context.Context, conditions []qb.Condition) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(conditions...).
		OrderBy("league_id", "match_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		m, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, nil
}

func (r *MatchRepository) UpdateTeamRefs(ctx context.Context, matchID, homeTeamID, awayTeamID int64) error {
	query, args, err := qb.Update("matches").
		Set("home_team_id", nullableInt64(homeTeamID)).
		Set("away_team_id", nullableInt64(awayTeamID)).
		SetExpr("updated_at", "now()").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match teams query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update match %d team refs: %w", matchID, err)
	}

	return nil
}

func matchFromRow(row matchTableModel) (match.Match, error) {
	var playerIDs []string
	if row.PlayerIDs != "" {
		if err := sonic.UnmarshalString(row.PlayerIDs, &playerIDs); err != nil {
			return match.Match{}, fmt.Errorf("decode match %d player ids: %w", row.ID, err)
		}
	}

	return match.Match{
		ID:                row.ID,
		LeagueID:          row.LeagueID,
		ContentKey:        row.ContentKey,
		SourceKey:         nullStringToString(row.SourceKey),
		Date:              row.MatchDate,
		HomeTeamID:        nullInt64ToInt64(row.HomeTeamID),
		AwayTeamID:        nullInt64ToInt64(row.AwayTeamID),
		HomeTeamName:      row.HomeTeamName,
		AwayTeamName:      row.AwayTeamName,
		PlayerExternalIDs: playerIDs,
		Score:             row.Score,
		ReviewFlag:        row.ReviewFlag,
	}, nil
}

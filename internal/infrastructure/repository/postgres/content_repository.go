package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/leaguesync/internal/domain/content"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

var contentTables = map[content.Kind]string{
	content.KindPoll:           "polls",
	content.KindCaptainMessage: "captain_messages",
	content.KindPracticeSlot:   "practice_slots",
	content.KindLineupSession:  "lineup_sessions",
}

func contentTable(kind content.Kind) (string, error) {
	table, ok := contentTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
	return table, nil
}

// ContentRepository reads and repairs the user-content tables owned by other
// subsystems. All four tables share the same shape, so every operation
// dispatches on the kind's table name.
type ContentRepository struct {
	db DB
}

func NewContentRepository(db DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) List(ctx context.Context) ([]content.Row, error) {
	var out []content.Row
	for _, kind := range content.AllKinds() {
		table := contentTables[kind]
		query, args, err := qb.Select("*").From(table).
			OrderBy("id").
			ToSQL()
		if err != nil {
			return nil, fmt.Errorf("build list %s query: %w", table, err)
		}

		var rows []contentRowTableModel
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("select %s: %w", table, err)
		}
		for _, row := range rows {
			out = append(out, contentRowFromModel(kind, row))
		}
	}

	return out, nil
}

func (r *ContentRepository) Get(ctx context.Context, kind content.Kind, contentID int64) (content.Row, bool, error) {
	table, err := contentTable(kind)
	if err != nil {
		return content.Row{}, false, err
	}

	query, args, err := qb.Select("*").From(table).
		Where(qb.Eq("id", contentID)).
		ToSQL()
	if err != nil {
		return content.Row{}, false, fmt.Errorf("build get %s query: %w", table, err)
	}

	var row contentRowTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return content.Row{}, false, nil
		}
		return content.Row{}, false, fmt.Errorf("select %s %d: %w", table, contentID, err)
	}

	return contentRowFromModel(kind, row), true, nil
}

func (r *ContentRepository) UpdateTeamRef(ctx context.Context, kind content.Kind, contentID, teamID int64) error {
	table, err := contentTable(kind)
	if err != nil {
		return err
	}

	query, args, err := qb.Update(table).
		Set("team_id", nullableInt64(teamID)).
		Where(qb.Eq("id", contentID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update %s team query: %w", table, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s %d team ref: %w", table, contentID, err)
	}

	return nil
}

// Restore re-inserts a row lost to a structural replace, keeping its
// original identifier so links held by users stay valid.
func (r *ContentRepository) Restore(ctx context.Context, row content.Row) error {
	table, err := contentTable(row.Kind)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertInto(table).
		Columns("id", "team_id", "created_by", "body", "created_at").
		Values(row.ID, nullableInt64(row.TeamID), row.CreatedBy, row.Body, row.CreatedAt).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build restore %s query: %w", table, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("restore %s %d: %w", table, row.ID, err)
	}

	// An explicit-id insert never advances the serial sequence, so the
	// owning subsystem's next insert could collide with a restored id.
	seqQuery := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), GREATEST((SELECT COALESCE(MAX(id), 1) FROM %s), $1))",
		table, table,
	)
	if _, err := r.db.ExecContext(ctx, seqQuery, row.ID); err != nil {
		return fmt.Errorf("advance %s id sequence: %w", table, err)
	}

	return nil
}

func contentRowFromModel(kind content.Kind, row contentRowTableModel) content.Row {
	return content.Row{
		Kind:      kind,
		ID:        row.ID,
		TeamID:    nullInt64ToInt64(row.TeamID),
		CreatedBy: row.CreatedBy,
		Body:      row.Body,
		CreatedAt: row.CreatedAt,
	}
}

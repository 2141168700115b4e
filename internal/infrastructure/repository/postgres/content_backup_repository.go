package postgres

import (
	"context"
	"fmt"

	"github.com/riskibarqy/leaguesync/internal/domain/content"
	qb "github.com/riskibarqy/leaguesync/internal/platform/querybuilder"
)

type ContentBackupRepository struct {
	db DB
}

func NewContentBackupRepository(db DB) *ContentBackupRepository {
	return &ContentBackupRepository{db: db}
}

// SaveAll writes the holding-area rows in one transaction so a crash during
// backup leaves either the full snapshot or nothing.
func (r *ContentBackupRepository) SaveAll(ctx context.Context, backups []content.Backup) error {
	if len(backups) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save backups tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, b := range backups {
		query, args, err := qb.InsertModel("content_backups",
			contentBackupInsertModel{
				RunID:      b.RunID,
				Kind:       string(b.Kind),
				ContentID:  b.ContentID,
				TeamID:     nullableInt64(b.TeamID),
				ClubName:   b.ClubName,
				SeriesName: b.SeriesName,
				LeagueCode: b.LeagueCode,
				CreatedBy:  b.CreatedBy,
				Payload:    b.Payload,
				BackedUpAt: b.BackedUpAt,
			},
			"",
		)
		if err != nil {
			return fmt.Errorf("build insert backup query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert backup %s/%d: %w", b.Kind, b.ContentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save backups tx: %w", err)
	}

	return nil
}

// ListPending returns holding-area rows not yet restored or parked for
// triage, from any run. A crashed run's backup is picked up by the next.
func (r *ContentBackupRepository) ListPending(ctx context.Context) ([]content.Backup, error) {
	query, args, err := qb.Select("*").From("content_backups").
		Where(
			qb.IsNull("restored_at"),
			qb.Eq("unresolved", false),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending backups query: %w", err)
	}

	var rows []contentBackupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pending backups: %w", err)
	}

	out := make([]content.Backup, 0, len(rows))
	for _, row := range rows {
		b := content.Backup{
			ID:         row.ID,
			RunID:      row.RunID,
			Kind:       content.Kind(row.Kind),
			ContentID:  row.ContentID,
			TeamID:     nullInt64ToInt64(row.TeamID),
			ClubName:   row.ClubName,
			SeriesName: row.SeriesName,
			LeagueCode: row.LeagueCode,
			CreatedBy:  row.CreatedBy,
			Payload:    row.Payload,
			BackedUpAt: row.BackedUpAt,
			Unresolved: row.Unresolved,
		}
		if row.RestoredAt.Valid {
			restoredAt := row.RestoredAt.Time
			b.RestoredAt = &restoredAt
		}
		out = append(out, b)
	}

	return out, nil
}

func (r *ContentBackupRepository) MarkRestored(ctx context.Context, backupIDs []int64) error {
	return r.markWhereIn(ctx, backupIDs, func(b *qb.UpdateBuilder) *qb.UpdateBuilder {
		return b.SetExpr("restored_at", "now()")
	})
}

func (r *ContentBackupRepository) MarkUnresolved(ctx context.Context, backupIDs []int64) error {
	return r.markWhereIn(ctx, backupIDs, func(b *qb.UpdateBuilder) *qb.UpdateBuilder {
		return b.Set("unresolved", true)
	})
}

func (r *ContentBackupRepository) markWhereIn(ctx context.Context, backupIDs []int64, set func(*qb.UpdateBuilder) *qb.UpdateBuilder) error {
	if len(backupIDs) == 0 {
		return nil
	}
	ids := make([]any, 0, len(backupIDs))
	for _, id := range backupIDs {
		ids = append(ids, id)
	}

	query, args, err := set(qb.Update("content_backups")).
		Where(qb.In("id", ids)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark backups query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark backups: %w", err)
	}

	return nil
}

// PurgeRestored clears a run's confirmed rows. Unresolved rows stay behind
// for manual triage.
func (r *ContentBackupRepository) PurgeRestored(ctx context.Context, runID string) error {
	query, args, err := qb.DeleteFrom("content_backups").
		Where(
			qb.Eq("run_id", runID),
			qb.NotNull("restored_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build purge backups query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("purge restored backups for run %s: %w", runID, err)
	}

	return nil
}

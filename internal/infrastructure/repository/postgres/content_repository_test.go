package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/leaguesync/internal/domain/content"
)

// execRecorder satisfies DB and captures every statement so tests can pin
// the SQL a repository issues without a live store.
type execRecorder struct {
	queries []string
	args    [][]any
}

func (r *execRecorder) GetContext(context.Context, any, string, ...any) error {
	return sql.ErrNoRows
}

func (r *execRecorder) SelectContext(context.Context, any, string, ...any) error {
	return nil
}

func (r *execRecorder) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return driver.RowsAffected(1), nil
}

func (r *execRecorder) BeginTxx(context.Context, *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, fmt.Errorf("transactions not supported")
}

// Restoring a row with its original id must also advance the table's serial
// sequence, or the owning subsystem's next insert collides with it.
func TestContentRestoreAdvancesSerialSequence(t *testing.T) {
	db := &execRecorder{}
	repo := NewContentRepository(db)

	err := repo.Restore(context.Background(), content.Row{
		Kind:      content.KindPoll,
		ID:        4711,
		TeamID:    3,
		CreatedBy: "Anna Berg",
		Body:      "Friday lineup vote",
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, db.queries, 2)
	assert.Contains(t, db.queries[0], "INSERT INTO polls")
	assert.Contains(t, db.queries[0], "ON CONFLICT (id) DO NOTHING")

	assert.Contains(t, db.queries[1], "pg_get_serial_sequence('polls', 'id')")
	assert.Contains(t, db.queries[1], "GREATEST")
	require.Len(t, db.args[1], 1)
	assert.Equal(t, int64(4711), db.args[1][0])
}

func TestContentRestoreRejectsUnknownKind(t *testing.T) {
	db := &execRecorder{}
	repo := NewContentRepository(db)

	err := repo.Restore(context.Background(), content.Row{Kind: content.Kind("diary"), ID: 1})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown content kind"))
	assert.Empty(t, db.queries)
}

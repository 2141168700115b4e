package app

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/riskibarqy/leaguesync/internal/config"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
)

const maxTracedQueryLength = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

// RotatingDB owns the live store handle and recycles it once either the
// operation count or the age bound is exceeded. Repositories hold the
// wrapper, not the *sqlx.DB, so a swap is invisible to them. Rotate must
// only run between checkpoints; in-flight statements on the old handle
// would fail mid-swap.
type RotatingDB struct {
	url        string
	dbName     string
	maxOps     int64
	maxElapsed time.Duration
	logger     *logging.Logger

	mu       sync.RWMutex
	db       *sqlx.DB
	openedAt time.Time
	ops      atomic.Int64
}

func OpenRotatingDB(ctx context.Context, cfg config.Config, logger *logging.Logger) (*RotatingDB, error) {
	if logger == nil {
		logger = logging.Default()
	}

	r := &RotatingDB{
		url:        normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		dbName:     dbNameFromURL(cfg.DBURL),
		maxOps:     int64(cfg.RotateMaxOps),
		maxElapsed: cfg.RotateMaxElapsed,
		logger:     logger.WithComponent("app.db"),
	}

	db, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.openedAt = time.Now()

	return r, nil
}

func (r *RotatingDB) open(ctx context.Context) (*sqlx.DB, error) {
	db, err := otelsqlx.ConnectContext(ctx, "postgres", r.url,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(r.dbName),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}

	return db, nil
}

// Rotate recycles the handle when a bound is exceeded, otherwise it is a
// no-op. A failed reopen surfaces so the run aborts instead of continuing
// on a closed handle.
func (r *RotatingDB) Rotate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops := r.ops.Load()
	age := time.Since(r.openedAt)
	if (r.maxOps <= 0 || ops < r.maxOps) && (r.maxElapsed <= 0 || age < r.maxElapsed) {
		return nil
	}

	if err := r.db.Close(); err != nil {
		r.logger.WarnContext(ctx, "close rotated store handle", "error", err)
	}

	db, err := r.open(ctx)
	if err != nil {
		return errors.Wrap(err, "reopen store connection")
	}
	r.db = db
	r.openedAt = time.Now()
	r.ops.Store(0)

	r.logger.InfoContext(ctx, "store connection rotated", "ops", ops, "age", age.String())

	return nil
}

func (r *RotatingDB) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.Close()
}

func (r *RotatingDB) handle() *sqlx.DB {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.db
}

func (r *RotatingDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	r.ops.Add(1)
	return r.handle().GetContext(ctx, dest, query, args...)
}

func (r *RotatingDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	r.ops.Add(1)
	return r.handle().SelectContext(ctx, dest, query, args...)
}

func (r *RotatingDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	r.ops.Add(1)
	return r.handle().ExecContext(ctx, query, args...)
}

func (r *RotatingDB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	r.ops.Add(1)
	return r.handle().BeginTxx(ctx, opts)
}

package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// DB is the slice of sqlx the repositories need. *sqlx.DB satisfies it
// directly; the app hands in a rotating wrapper instead so a checkpoint
// rotation does not invalidate repository references.
type DB interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

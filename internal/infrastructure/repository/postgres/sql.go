package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsTransient reports whether err looks like a recoverable connection or
// shutdown failure worth retrying. Postgres class 08 covers connection
// exceptions, 57P01..57P03 admin shutdowns and startup refusals.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		if strings.HasPrefix(code, "08") || strings.HasPrefix(code, "57P") {
			return true
		}
		return false
	}
	if errors.Is(err, sql.ErrConnDone) {
		return true
	}
	text := err.Error()
	return strings.Contains(text, "connection refused") ||
		strings.Contains(text, "connection reset") ||
		strings.Contains(text, "broken pipe") ||
		strings.Contains(text, "i/o timeout")
}

// IsConstraintViolation reports schema-level failures that signal drift
// between the engine and the database: integrity violations (class 23) and
// missing or mismatched objects (class 42). Never retried.
func IsConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		return strings.HasPrefix(code, "23") || strings.HasPrefix(code, "42")
	}
	return false
}

// upsertResult captures the outcome of an ON CONFLICT upsert. xmax is zero
// for freshly inserted tuples, so RETURNING (xmax = 0) distinguishes insert
// from update without a second round trip.
type upsertResult struct {
	ID       int64 `db:"id"`
	Inserted bool  `db:"inserted"`
}

const upsertOutcome = "(xmax = 0) AS inserted"

func nullableInt64(value int64) sql.NullInt64 {
	return sql.NullInt64{Int64: value, Valid: value > 0}
}

func nullInt64ToInt64(value sql.NullInt64) int64 {
	if !value.Valid {
		return 0
	}
	return value.Int64
}

func nullableString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullStringToString(value sql.NullString) string {
	if !value.Valid {
		return ""
	}
	return value.String
}

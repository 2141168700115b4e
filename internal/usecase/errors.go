package usecase

import "github.com/cockroachdb/errors"

// Sentinels for the run's error taxonomy. Record-level errors never abort a
// run; stage-level transient errors retry; constraint violations abort the
// whole run because the store no longer matches the engine's assumptions.
var (
	ErrSourceData          = errors.New("malformed source record")
	ErrIdentityCollision   = errors.New("conflicting records for one natural key")
	ErrOrphanReference     = errors.New("dangling reference")
	ErrRestorationMatch    = errors.New("backed-up content row matched no team")
	ErrTransientConnection = errors.New("transient store failure")
	ErrConstraintViolation = errors.New("unexpected constraint violation")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("resource not found")
)

package content

import "context"

// Repository is the engine's read/repair surface over user-content tables.
// Rows are created by other subsystems; the engine only lists them, repoints
// team references, and re-inserts rows lost to a structural replace.
type Repository interface {
	List(ctx context.Context) ([]Row, error)
	Get(ctx context.Context, kind Kind, contentID int64) (Row, bool, error)
	// UpdateTeamRef repoints one row's team reference; teamID 0 nulls it.
	UpdateTeamRef(ctx context.Context, kind Kind, contentID, teamID int64) error
	// Restore re-inserts a row verbatim, keeping its original identifier.
	Restore(ctx context.Context, row Row) error
}

// BackupRepository manages the transient holding area. Rows survive until
// restoration is confirmed; a failed run leaves them for forensics.
type BackupRepository interface {
	SaveAll(ctx context.Context, backups []Backup) error
	// ListPending returns holding-area rows from any run that have not been
	// restored yet, so a crashed run's backup is picked up by the next one.
	ListPending(ctx context.Context) ([]Backup, error)
	MarkRestored(ctx context.Context, backupIDs []int64) error
	MarkUnresolved(ctx context.Context, backupIDs []int64) error
	// PurgeRestored clears confirmed rows for a run; unresolved rows stay
	// for manual triage.
	PurgeRestored(ctx context.Context, runID string) error
}

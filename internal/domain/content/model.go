package content

import (
	"fmt"
	"time"
)

// Kind enumerates the team-scoped user content tables owned by other
// subsystems. The engine never interprets their rows; it only keeps the
// team reference valid across structural imports.
type Kind string

const (
	KindPoll           Kind = "poll"
	KindCaptainMessage Kind = "captain_message"
	KindPracticeSlot   Kind = "practice_slot"
	KindLineupSession  Kind = "lineup_session"
)

func AllKinds() []Kind {
	return []Kind{KindPoll, KindCaptainMessage, KindPracticeSlot, KindLineupSession}
}

func (k Kind) Valid() bool {
	switch k {
	case KindPoll, KindCaptainMessage, KindPracticeSlot, KindLineupSession:
		return true
	default:
		return false
	}
}

// Row is the engine's view of one user-content record: identity, the team
// reference it must protect, the creator, and the free-text body (consulted
// only by the series-number restore fallback).
type Row struct {
	Kind      Kind
	ID        int64
	TeamID    int64
	CreatedBy string
	Body      string
	CreatedAt time.Time
}

// Backup is one holding-area row: the content row snapshotted verbatim plus
// the natural key of the team it pointed at, so restoration can fall back to
// name matching when surrogate identity was not preserved.
type Backup struct {
	ID         int64
	RunID      string
	Kind       Kind
	ContentID  int64
	TeamID     int64
	ClubName   string
	SeriesName string
	LeagueCode string
	CreatedBy  string
	Payload    string
	BackedUpAt time.Time
	RestoredAt *time.Time
	Unresolved bool
}

func (b Backup) Validate() error {
	if b.RunID == "" {
		return fmt.Errorf("backup run id is required")
	}
	if !b.Kind.Valid() {
		return fmt.Errorf("backup kind %q is invalid", b.Kind)
	}
	if b.ContentID <= 0 {
		return fmt.Errorf("backup content id is required")
	}

	return nil
}

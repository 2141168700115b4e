package namemapping

import (
	"fmt"
	"time"
)

// Mapping translates one league's user-facing naming convention into the
// canonical stored name. Rows are added administratively, never by a run.
type Mapping struct {
	ID            int64
	LeagueID      int64
	SourceName    string
	CanonicalName string
	CreatedAt     time.Time
}

func (m Mapping) Validate() error {
	if m.LeagueID <= 0 {
		return fmt.Errorf("mapping league id is required")
	}
	if m.SourceName == "" {
		return fmt.Errorf("mapping source name is required")
	}
	if m.CanonicalName == "" {
		return fmt.Errorf("mapping canonical name is required")
	}

	return nil
}

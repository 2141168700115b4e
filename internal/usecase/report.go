package usecase

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

// RunStatus is the overall outcome of one reconciliation run.
type RunStatus string

const (
	StatusHealthy  RunStatus = "healthy"
	StatusDegraded RunStatus = "degraded"
	StatusFailed   RunStatus = "failed"
)

// Counts is the per-component inserted/updated/skipped triple.
type Counts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

func (c *Counts) add(other Counts) {
	c.Inserted += other.Inserted
	c.Updated += other.Updated
	c.Skipped += other.Skipped
}

// UpsertStats aggregates the upsert engine's work for one run.
type UpsertStats struct {
	Leagues    Counts `json:"leagues"`
	Clubs      Counts `json:"clubs"`
	Series     Counts `json:"series"`
	Teams      Counts `json:"teams"`
	Players    Counts `json:"players"`
	Collisions int    `json:"identity_collisions"`
}

func (s *UpsertStats) merge(other UpsertStats) {
	s.Leagues.add(other.Leagues)
	s.Clubs.add(other.Clubs)
	s.Series.add(other.Series)
	s.Teams.add(other.Teams)
	s.Players.add(other.Players)
	s.Collisions += other.Collisions
}

// RelationshipStats counts association rows written by the reconciler.
type RelationshipStats struct {
	ClubLeaguesAdded   int `json:"club_leagues_added"`
	SeriesLeaguesAdded int `json:"series_leagues_added"`
}

func (s *RelationshipStats) merge(other RelationshipStats) {
	s.ClubLeaguesAdded += other.ClubLeaguesAdded
	s.SeriesLeaguesAdded += other.SeriesLeaguesAdded
}

// RestoreStats summarizes the backup/restore handshake.
type RestoreStats struct {
	BackedUp   int `json:"backed_up"`
	Restored   int `json:"restored"`
	Remapped   int `json:"remapped"`
	Unresolved int `json:"unresolved"`
}

// OrphanStats summarizes the auditor's final pass.
type OrphanStats struct {
	Found      int `json:"found"`
	Repaired   int `json:"repaired"`
	Unresolved int `json:"unresolved"`
}

// RunReport is the structured end-of-run health output.
type RunReport struct {
	RunID          string            `json:"run_id"`
	Status         RunStatus         `json:"status"`
	Leagues        []string          `json:"leagues"`
	DryRun         bool              `json:"dry_run,omitempty"`
	SourceSkipped  int               `json:"source_records_skipped"`
	Upserts        UpsertStats       `json:"upserts"`
	Relationships  RelationshipStats `json:"relationships"`
	Matches        Counts            `json:"matches"`
	MatchesFlagged int               `json:"matches_flagged_for_review"`
	Restore        RestoreStats      `json:"restore"`
	Orphans        OrphanStats       `json:"orphans"`
	Failure        string            `json:"failure,omitempty"`
}

// Render marshals the report as indented JSON for the end-of-run log line.
// Encoding streams into a pooled buffer so repeated scheduled runs do not
// reallocate for every report.
func (r RunReport) Render() (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigDefault.NewEncoder(buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("marshal run report: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

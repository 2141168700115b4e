package source

import (
	"fmt"
	"strings"
	"time"
)

// Typed snapshot records. The loader is the only place untyped JSON exists;
// everything downstream works with these structs after validation.

// PlayerRecord is one roster entry from players.json. Club and series names
// arrive in the league's own naming convention.
type PlayerRecord struct {
	ExternalID string  `json:"player_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Club       string  `json:"club" validate:"required"`
	Series     string  `json:"series" validate:"required"`
	Team       string  `json:"team"`
	Rating     float64 `json:"rating"`
}

// MatchRecord is one played match from matches.json. The source identifier
// is optional; identity falls back to the content-derived key.
type MatchRecord struct {
	SourceID  string   `json:"match_id"`
	Date      string   `json:"date" validate:"required"`
	HomeTeam  string   `json:"home_team" validate:"required"`
	AwayTeam  string   `json:"away_team" validate:"required"`
	PlayerIDs []string `json:"player_ids"`
	Score     string   `json:"score"`

	ParsedDate time.Time `json:"-"`
}

// ScheduleRecord is one fixture from schedule.json, played or upcoming.
// Schedules are an independent association source: clubs and series can
// appear here that no roster mentions in a given run.
type ScheduleRecord struct {
	Club     string `json:"club" validate:"required"`
	Series   string `json:"series" validate:"required"`
	Team     string `json:"team"`
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
}

// StandingRecord is one series-table row from standings.json.
type StandingRecord struct {
	Club   string `json:"club" validate:"required"`
	Series string `json:"series" validate:"required"`
	Team   string `json:"team"`
	Won    int    `json:"won"`
	Lost   int    `json:"lost"`
}

type leagueMeta struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SkippedRecord documents one malformed input record. Skips never abort a
// run; they are counted into the run report.
type SkippedRecord struct {
	File   string
	Index  int
	Reason string
}

// Snapshot is everything loaded for one league directory.
type Snapshot struct {
	LeagueCode string
	LeagueName string
	Players    []PlayerRecord
	Matches    []MatchRecord
	Schedule   []ScheduleRecord
	Standings  []StandingRecord
	Skipped    []SkippedRecord
}

var matchDateLayouts = []string{"2006-01-02", "02.01.2006", "2006-01-02T15:04:05Z07:00"}

func parseMatchDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range matchDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

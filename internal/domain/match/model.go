package match

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/leaguesync/internal/platform/fuzzy"
)

// Match is keyed by a content-derived identity so that repeated imports of
// the same real-world match collide instead of duplicating. A well-formed
// source-supplied identifier is stored alongside and takes precedence at
// lookup time.
type Match struct {
	ID                int64
	LeagueID          int64
	ContentKey        string
	SourceKey         string
	Date              time.Time
	HomeTeamID        int64
	AwayTeamID        int64
	HomeTeamName      string
	AwayTeamName      string
	PlayerExternalIDs []string
	Score             string
	// ReviewFlag marks matches deduplicated without player identifiers,
	// where two distinct matches sharing date, teams and score would merge.
	ReviewFlag bool
}

var sourceKeyRegex = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeSourceKey canonicalizes a source-supplied match identifier so
// cosmetic differences between scrapes ("M-2024/0317" vs "m 2024 0317")
// resolve to the same key. Returns "" when the identifier is malformed.
func NormalizeSourceKey(raw string) string {
	key := sourceKeyRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
	if len(key) < 3 {
		return ""
	}
	return key
}

// DeriveContentKey computes the deterministic natural identity of a match
// from date, normalized team names, sorted player identifiers and score.
// Two matches are the same if and only if all of those agree.
func DeriveContentKey(date time.Time, homeTeam, awayTeam string, playerIDs []string, score string) string {
	ids := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := []string{
		date.Format("2006-01-02"),
		fuzzy.Normalize(homeTeam),
		fuzzy.Normalize(awayTeam),
		strings.Join(ids, ","),
		strings.TrimSpace(score),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func (m Match) Validate() error {
	if m.LeagueID <= 0 {
		return fmt.Errorf("match league id is required")
	}
	if m.Date.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if m.HomeTeamName == "" || m.AwayTeamName == "" {
		return fmt.Errorf("match team names are required")
	}
	if m.ContentKey == "" {
		return fmt.Errorf("match content key is required")
	}

	return nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/leaguesync/internal/domain/league"
	"github.com/riskibarqy/leaguesync/internal/domain/match"
	"github.com/riskibarqy/leaguesync/internal/domain/team"
	"github.com/riskibarqy/leaguesync/internal/platform/fuzzy"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
	"github.com/riskibarqy/leaguesync/internal/source"
)

const teamFuzzyMinScore = 0.6

// MatchService deduplicates and upserts match records. Identity prefers a
// well-formed source identifier; otherwise the content-derived key keeps
// repeated scrapes of the same real-world match on one row.
type MatchService struct {
	matches match.Repository
	teams   team.Repository
	logger  *logging.Logger
}

func NewMatchService(matches match.Repository, teams team.Repository, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matches: matches,
		teams:   teams,
		logger:  logger.WithComponent("usecase.match"),
	}
}

// MatchStats is the dedup outcome for one league's match stream.
type MatchStats struct {
	Counts  Counts
	Flagged int
}

// ImportMatches upserts one league's matches. A match without player
// identifiers still dedupes on date, teams and score; that looser identity
// can merge two real matches by coincidence, so such rows carry a review
// flag instead of silent trust.
func (s *MatchService) ImportMatches(ctx context.Context, l league.League, snap source.Snapshot) (MatchStats, error) {
	ctx, span := startUsecaseSpan(ctx, "MatchService.ImportMatches")
	defer span.End()

	var stats MatchStats
	if l.ID <= 0 {
		return stats, errors.Wrap(ErrInvalidInput, "league id is required")
	}

	teams, err := s.teams.ListByLeague(ctx, l.ID)
	if err != nil {
		return stats, fmt.Errorf("list teams for league %s: %w", l.Code, err)
	}
	resolver := newTeamNameResolver(teams)

	for _, rec := range snap.Matches {
		m := match.Match{
			LeagueID:          l.ID,
			SourceKey:         match.NormalizeSourceKey(rec.SourceID),
			Date:              rec.ParsedDate,
			HomeTeamName:      rec.HomeTeam,
			AwayTeamName:      rec.AwayTeam,
			PlayerExternalIDs: rec.PlayerIDs,
			Score:             rec.Score,
			ReviewFlag:        len(rec.PlayerIDs) == 0,
		}
		m.ContentKey = match.DeriveContentKey(m.Date, m.HomeTeamName, m.AwayTeamName, m.PlayerExternalIDs, m.Score)
		m.HomeTeamID = resolver.resolve(rec.HomeTeam)
		m.AwayTeamID = resolver.resolve(rec.AwayTeam)

		if err := m.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skipping invalid match record",
				"league", l.Code, "error", errors.Mark(err, ErrSourceData))
			stats.Counts.Skipped++
			continue
		}

		_, inserted, err := s.matches.Upsert(ctx, m)
		if err != nil {
			return stats, fmt.Errorf("upsert match %s: %w", m.ContentKey, err)
		}
		countOutcome(&stats.Counts, inserted)
		if m.ReviewFlag {
			stats.Flagged++
		}
	}

	if stats.Flagged > 0 {
		s.logger.WarnContext(ctx, "matches deduplicated without player identifiers flagged for review",
			"league", l.Code, "flagged", stats.Flagged)
	}

	return stats, nil
}

// teamNameResolver maps scraped team names onto stored teams by display
// name and alias. Ambiguous or weak matches resolve to 0 and are left for
// the orphan auditor rather than guessed here.
type teamNameResolver struct {
	names []string
	ids   map[string]int64
}

func newTeamNameResolver(teams []team.Team) *teamNameResolver {
	r := &teamNameResolver{ids: make(map[string]int64, len(teams)*2)}
	add := func(name string, id int64) {
		if name == "" {
			return
		}
		if _, ok := r.ids[name]; !ok {
			r.ids[name] = id
			r.names = append(r.names, name)
		}
	}
	for _, t := range teams {
		add(t.DisplayName, t.ID)
		add(t.Alias, t.ID)
	}

	return r
}

func (r *teamNameResolver) resolve(name string) int64 {
	if id, ok := r.ids[name]; ok {
		return id
	}
	best, ok, _ := fuzzy.BestUnique(name, r.names, teamFuzzyMinScore)
	if !ok {
		return 0
	}

	return r.ids[best]
}

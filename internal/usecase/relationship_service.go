package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/leaguesync/internal/domain/club"
	"github.com/riskibarqy/leaguesync/internal/domain/league"
	"github.com/riskibarqy/leaguesync/internal/domain/series"
	"github.com/riskibarqy/leaguesync/internal/domain/team"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
	"github.com/riskibarqy/leaguesync/internal/source"
)

// RelationshipService unions candidate (club, league) and (series, league)
// pairs from every stream that mentions them and writes the missing rows.
// Rosters alone under-report: a club can appear only in schedules or
// standings for a given run, so all three streams plus the team table feed
// the union.
type RelationshipService struct {
	clubs       club.Repository
	series      series.Repository
	teams       team.Repository
	nameMapping *NameMappingService
	logger      *logging.Logger
}

func NewRelationshipService(
	clubs club.Repository,
	seriesRepo series.Repository,
	teams team.Repository,
	nameMapping *NameMappingService,
	logger *logging.Logger,
) *RelationshipService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RelationshipService{
		clubs:       clubs,
		series:      seriesRepo,
		teams:       teams,
		nameMapping: nameMapping,
		logger:      logger.WithComponent("usecase.relationship"),
	}
}

// Reconcile ensures every implied association row exists for one league.
// Idempotent: existing pairs are no-ops. After it runs, every team's club
// and series are associated with the team's league.
func (s *RelationshipService) Reconcile(ctx context.Context, l league.League, snap source.Snapshot) (RelationshipStats, error) {
	ctx, span := startUsecaseSpan(ctx, "RelationshipService.Reconcile")
	defer span.End()

	var stats RelationshipStats
	if l.ID <= 0 {
		return stats, errors.Wrap(ErrInvalidInput, "league id is required")
	}

	clubIDs := make(map[int64]struct{})
	seriesIDs := make(map[int64]struct{})

	// Teams already in the store for this league are the authoritative
	// floor; the streams add pairs no current team implies.
	teams, err := s.teams.ListByLeague(ctx, l.ID)
	if err != nil {
		return stats, fmt.Errorf("list teams for league %s: %w", l.Code, err)
	}
	for _, t := range teams {
		clubIDs[t.ClubID] = struct{}{}
		seriesIDs[t.SeriesID] = struct{}{}
	}

	for _, clubName := range streamClubNames(snap) {
		c, found, err := s.clubs.GetByName(ctx, clubName)
		if err != nil {
			return stats, fmt.Errorf("resolve club %s: %w", clubName, err)
		}
		if !found {
			continue
		}
		clubIDs[c.ID] = struct{}{}
	}

	for _, seriesName := range streamSeriesNames(snap) {
		canonical, err := s.nameMapping.Resolve(ctx, l.ID, seriesName)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				canonical = seriesName
			} else {
				return stats, err
			}
		}
		row, found, err := s.series.GetByName(ctx, canonical)
		if err != nil {
			return stats, fmt.Errorf("resolve series %s: %w", canonical, err)
		}
		if !found {
			continue
		}
		seriesIDs[row.ID] = struct{}{}
	}

	for clubID := range clubIDs {
		added, err := s.clubs.EnsureLeague(ctx, clubID, l.ID)
		if err != nil {
			return stats, fmt.Errorf("ensure club league (%d, %d): %w", clubID, l.ID, err)
		}
		if added {
			stats.ClubLeaguesAdded++
		}
	}
	for seriesID := range seriesIDs {
		added, err := s.series.EnsureLeague(ctx, seriesID, l.ID)
		if err != nil {
			return stats, fmt.Errorf("ensure series league (%d, %d): %w", seriesID, l.ID, err)
		}
		if added {
			stats.SeriesLeaguesAdded++
		}
	}

	if stats.ClubLeaguesAdded > 0 || stats.SeriesLeaguesAdded > 0 {
		s.logger.InfoContext(ctx, "association rows repaired",
			"league", l.Code,
			"club_leagues_added", stats.ClubLeaguesAdded,
			"series_leagues_added", stats.SeriesLeaguesAdded,
		)
	}

	return stats, nil
}

func streamClubNames(snap source.Snapshot) []string {
	return unionNames(
		func(add func(string)) {
			for _, rec := range snap.Players {
				add(rec.Club)
			}
		},
		func(add func(string)) {
			for _, rec := range snap.Schedule {
				add(rec.Club)
			}
		},
		func(add func(string)) {
			for _, rec := range snap.Standings {
				add(rec.Club)
			}
		},
	)
}

func streamSeriesNames(snap source.Snapshot) []string {
	return unionNames(
		func(add func(string)) {
			for _, rec := range snap.Players {
				add(rec.Series)
			}
		},
		func(add func(string)) {
			for _, rec := range snap.Schedule {
				add(rec.Series)
			}
		},
		func(add func(string)) {
			for _, rec := range snap.Standings {
				add(rec.Series)
			}
		},
	)
}

func unionNames(streams ...func(add func(string))) []string {
	seen := make(map[string]struct{})
	ordered := make([]string, 0)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		ordered = append(ordered, name)
	}
	for _, stream := range streams {
		stream(add)
	}

	return ordered
}

package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/leaguesync/internal/domain/club"
	"github.com/riskibarqy/leaguesync/internal/domain/content"
	"github.com/riskibarqy/leaguesync/internal/domain/league"
	"github.com/riskibarqy/leaguesync/internal/domain/match"
	"github.com/riskibarqy/leaguesync/internal/domain/player"
	"github.com/riskibarqy/leaguesync/internal/domain/series"
	"github.com/riskibarqy/leaguesync/internal/domain/team"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
)

// OrphanService is the post-import auditor. The schema carries no SQL
// foreign keys between engine tables, so dangling references are found by
// scanning every relationship the engine introduces and repaired by
// heuristics in confidence order: a single unambiguous candidate, then the
// involved user's current assignment, then a null reference logged as
// unresolved.
type OrphanService struct {
	leagues league.Repository
	clubs   club.Repository
	series  series.Repository
	teams   team.Repository
	players player.Repository
	matches match.Repository
	content content.Repository
	logger  *logging.Logger
}

func NewOrphanService(
	leagues league.Repository,
	clubs club.Repository,
	seriesRepo series.Repository,
	teams team.Repository,
	players player.Repository,
	matches match.Repository,
	contentRepo content.Repository,
	logger *logging.Logger,
) *OrphanService {
	if logger == nil {
		logger = logging.Default()
	}

	return &OrphanService{
		leagues: leagues,
		clubs:   clubs,
		series:  seriesRepo,
		teams:   teams,
		players: players,
		matches: matches,
		content: contentRepo,
		logger:  logger.WithComponent("usecase.orphan"),
	}
}

type auditState struct {
	leagueIDs map[int64]struct{}
	clubIDs   map[int64]struct{}
	seriesIDs map[int64]struct{}
	teams     map[int64]team.Team
	clubPairs map[[2]int64]struct{}
	serPairs  map[[2]int64]struct{}
	resolvers map[int64]*teamNameResolver
}

// Audit scans and, unless repair is disabled, heals every dangling
// reference. With repair disabled every finding counts as unresolved so the
// health gate still sees it.
func (s *OrphanService) Audit(ctx context.Context, repair bool) (OrphanStats, error) {
	ctx, span := startUsecaseSpan(ctx, "OrphanService.Audit")
	defer span.End()

	var stats OrphanStats

	state, err := s.loadState(ctx)
	if err != nil {
		return stats, err
	}

	if err := s.auditTeams(ctx, state, &stats); err != nil {
		return stats, err
	}
	if err := s.auditAssociations(ctx, state, repair, &stats); err != nil {
		return stats, err
	}
	if err := s.auditPlayers(ctx, state, repair, &stats); err != nil {
		return stats, err
	}
	if err := s.auditMatches(ctx, state, repair, &stats); err != nil {
		return stats, err
	}
	if err := s.auditContent(ctx, state, repair, &stats); err != nil {
		return stats, err
	}

	s.logger.InfoContext(ctx, "orphan audit complete",
		"repair", repair,
		"found", stats.Found,
		"repaired", stats.Repaired,
		"unresolved", stats.Unresolved,
	)

	return stats, nil
}

func (s *OrphanService) loadState(ctx context.Context) (*auditState, error) {
	state := &auditState{
		leagueIDs: make(map[int64]struct{}),
		clubIDs:   make(map[int64]struct{}),
		seriesIDs: make(map[int64]struct{}),
		teams:     make(map[int64]team.Team),
		clubPairs: make(map[[2]int64]struct{}),
		serPairs:  make(map[[2]int64]struct{}),
		resolvers: make(map[int64]*teamNameResolver),
	}

	leagues, err := s.leagues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	for _, l := range leagues {
		state.leagueIDs[l.ID] = struct{}{}
	}

	clubs, err := s.clubs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	for _, c := range clubs {
		state.clubIDs[c.ID] = struct{}{}
	}

	allSeries, err := s.series.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	for _, item := range allSeries {
		state.seriesIDs[item.ID] = struct{}{}
	}

	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	byLeague := make(map[int64][]team.Team)
	for _, t := range teams {
		state.teams[t.ID] = t
		byLeague[t.LeagueID] = append(byLeague[t.LeagueID], t)
	}
	for leagueID, leagueTeams := range byLeague {
		state.resolvers[leagueID] = newTeamNameResolver(leagueTeams)
	}

	clubPairs, err := s.clubs.LeaguePairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list club leagues: %w", err)
	}
	for _, pair := range clubPairs {
		state.clubPairs[[2]int64{pair.ClubID, pair.LeagueID}] = struct{}{}
	}

	serPairs, err := s.series.LeaguePairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series leagues: %w", err)
	}
	for _, pair := range serPairs {
		state.serPairs[[2]int64{pair.SeriesID, pair.LeagueID}] = struct{}{}
	}

	return state, nil
}

// auditTeams only reports. A team row with a dangling club, series or
// league reference has no safe automatic repair; repointing a NOT NULL
// hierarchy column by guesswork would be worse than surfacing it.
func (s *OrphanService) auditTeams(ctx context.Context, state *auditState, stats *OrphanStats) error {
	for _, t := range state.teams {
		if _, ok := state.clubIDs[t.ClubID]; !ok {
			s.reportUnresolved(ctx, stats, "team club reference dangling", "team_id", t.ID, "club_id", t.ClubID)
		}
		if _, ok := state.seriesIDs[t.SeriesID]; !ok {
			s.reportUnresolved(ctx, stats, "team series reference dangling", "team_id", t.ID, "series_id", t.SeriesID)
		}
		if _, ok := state.leagueIDs[t.LeagueID]; !ok {
			s.reportUnresolved(ctx, stats, "team league reference dangling", "team_id", t.ID, "league_id", t.LeagueID)
		}
	}

	return nil
}

// auditAssociations checks completeness: every team's club and series must
// be associated with the team's league. The missing row itself is the
// unambiguous repair.
func (s *OrphanService) auditAssociations(ctx context.Context, state *auditState, repair bool, stats *OrphanStats) error {
	for _, t := range state.teams {
		if _, ok := state.clubPairs[[2]int64{t.ClubID, t.LeagueID}]; !ok {
			stats.Found++
			if !repair {
				stats.Unresolved++
				continue
			}
			if _, err := s.clubs.EnsureLeague(ctx, t.ClubID, t.LeagueID); err != nil {
				return fmt.Errorf("repair club league (%d, %d): %w", t.ClubID, t.LeagueID, err)
			}
			state.clubPairs[[2]int64{t.ClubID, t.LeagueID}] = struct{}{}
			stats.Repaired++
			s.logger.InfoContext(ctx, "missing club league association repaired",
				"club_id", t.ClubID, "league_id", t.LeagueID)
		}
		if _, ok := state.serPairs[[2]int64{t.SeriesID, t.LeagueID}]; !ok {
			stats.Found++
			if !repair {
				stats.Unresolved++
				continue
			}
			if _, err := s.series.EnsureLeague(ctx, t.SeriesID, t.LeagueID); err != nil {
				return fmt.Errorf("repair series league (%d, %d): %w", t.SeriesID, t.LeagueID, err)
			}
			state.serPairs[[2]int64{t.SeriesID, t.LeagueID}] = struct{}{}
			stats.Repaired++
			s.logger.InfoContext(ctx, "missing series league association repaired",
				"series_id", t.SeriesID, "league_id", t.LeagueID)
		}
	}

	return nil
}

func (s *OrphanService) auditPlayers(ctx context.Context, state *auditState, repair bool, stats *OrphanStats) error {
	players, err := s.players.List(ctx)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}

	for _, p := range players {
		if p.TeamID == 0 {
			continue
		}
		if _, ok := state.teams[p.TeamID]; ok {
			continue
		}
		stats.Found++
		if !repair {
			stats.Unresolved++
			continue
		}

		// A player's own club/series/league assignment names exactly one
		// team when those references are intact.
		if candidate, ok := s.uniqueTeamForPlayer(ctx, p); ok {
			if err := s.players.UpdateTeamRef(ctx, p.ID, candidate); err != nil {
				return fmt.Errorf("repoint player %d: %w", p.ID, err)
			}
			stats.Repaired++
			s.logger.InfoContext(ctx, "player team reference repaired",
				"player", p.ExternalID, "team_id", candidate)
			continue
		}

		if err := s.players.UpdateTeamRef(ctx, p.ID, 0); err != nil {
			return fmt.Errorf("null player %d team ref: %w", p.ID, err)
		}
		stats.Unresolved++
		s.logger.WarnContext(ctx, "player team reference nulled",
			"player", p.ExternalID,
			"error", errors.Wrapf(ErrOrphanReference, "player %s", p.ExternalID))
	}

	return nil
}

func (s *OrphanService) uniqueTeamForPlayer(ctx context.Context, p player.Player) (int64, bool) {
	if p.ClubID == 0 || p.SeriesID == 0 || p.LeagueID == 0 {
		return 0, false
	}
	t, found, err := s.teams.GetByTriple(ctx, p.ClubID, p.SeriesID, p.LeagueID)
	if err != nil || !found {
		return 0, false
	}

	return t.ID, true
}

func (s *OrphanService) auditMatches(ctx context.Context, state *auditState, repair bool, stats *OrphanStats) error {
	matches, err := s.matches.List(ctx)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	for _, m := range matches {
		homeDangling := m.HomeTeamID != 0 && !teamExists(state, m.HomeTeamID)
		awayDangling := m.AwayTeamID != 0 && !teamExists(state, m.AwayTeamID)
		if !homeDangling && !awayDangling {
			continue
		}
		if homeDangling {
			stats.Found++
		}
		if awayDangling {
			stats.Found++
		}
		if !repair {
			if homeDangling {
				stats.Unresolved++
			}
			if awayDangling {
				stats.Unresolved++
			}
			continue
		}

		homeID, awayID := m.HomeTeamID, m.AwayTeamID
		resolver := state.resolvers[m.LeagueID]
		if homeDangling {
			homeID = resolveOrZero(resolver, m.HomeTeamName)
		}
		if awayDangling {
			awayID = resolveOrZero(resolver, m.AwayTeamName)
		}

		if err := s.matches.UpdateTeamRefs(ctx, m.ID, homeID, awayID); err != nil {
			return fmt.Errorf("repoint match %d: %w", m.ID, err)
		}

		countRepairOutcome(homeDangling, homeID, stats)
		countRepairOutcome(awayDangling, awayID, stats)
		s.logger.InfoContext(ctx, "match team references audited",
			"match_id", m.ID, "home_team_id", homeID, "away_team_id", awayID)
	}

	return nil
}

func (s *OrphanService) auditContent(ctx context.Context, state *auditState, repair bool, stats *OrphanStats) error {
	rows, err := s.content.List(ctx)
	if err != nil {
		return fmt.Errorf("list content rows: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	players, err := s.players.List(ctx)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}
	creatorTeams := creatorTeamAssignments(players)

	for _, row := range rows {
		if row.TeamID == 0 || teamExists(state, row.TeamID) {
			continue
		}
		stats.Found++
		if !repair {
			stats.Unresolved++
			continue
		}

		if candidate, ok := creatorTeams[row.CreatedBy]; ok && teamExists(state, candidate) {
			if err := s.content.UpdateTeamRef(ctx, row.Kind, row.ID, candidate); err != nil {
				return fmt.Errorf("repoint %s %d: %w", row.Kind, row.ID, err)
			}
			stats.Repaired++
			s.logger.InfoContext(ctx, "content team reference repaired via creator assignment",
				"kind", row.Kind, "content_id", row.ID, "team_id", candidate)
			continue
		}

		// Never delete user content; null the reference and report it.
		if err := s.content.UpdateTeamRef(ctx, row.Kind, row.ID, 0); err != nil {
			return fmt.Errorf("null %s %d team ref: %w", row.Kind, row.ID, err)
		}
		stats.Unresolved++
		s.logger.WarnContext(ctx, "content team reference nulled",
			"kind", row.Kind, "content_id", row.ID,
			"error", errors.Wrapf(ErrOrphanReference, "%s %d", row.Kind, row.ID))
	}

	return nil
}

func (s *OrphanService) reportUnresolved(ctx context.Context, stats *OrphanStats, msg string, args ...any) {
	stats.Found++
	stats.Unresolved++
	s.logger.WarnContext(ctx, msg, args...)
}

func teamExists(state *auditState, teamID int64) bool {
	_, ok := state.teams[teamID]
	return ok
}

func resolveOrZero(resolver *teamNameResolver, name string) int64 {
	if resolver == nil {
		return 0
	}
	return resolver.resolve(name)
}

func countRepairOutcome(wasDangling bool, newID int64, stats *OrphanStats) {
	if !wasDangling {
		return
	}
	if newID != 0 {
		stats.Repaired++
	} else {
		stats.Unresolved++
	}
}

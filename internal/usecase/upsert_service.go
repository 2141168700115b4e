package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/leaguesync/internal/domain/club"
	"github.com/riskibarqy/leaguesync/internal/domain/league"
	"github.com/riskibarqy/leaguesync/internal/domain/player"
	"github.com/riskibarqy/leaguesync/internal/domain/series"
	"github.com/riskibarqy/leaguesync/internal/domain/team"
	"github.com/riskibarqy/leaguesync/internal/platform/fuzzy"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
	"github.com/riskibarqy/leaguesync/internal/source"
)

// UpsertService is the entity upsert engine. It writes one league snapshot
// in strict dependency order: league, clubs and series, their league
// associations, teams, players. Natural keys collide in the store, so every
// write is a single conflict-handling statement and surrogate IDs survive
// re-imports.
type UpsertService struct {
	leagues     league.Repository
	clubs       club.Repository
	series      series.Repository
	teams       team.Repository
	players     player.Repository
	nameMapping *NameMappingService
	logger      *logging.Logger
}

func NewUpsertService(
	leagues league.Repository,
	clubs club.Repository,
	seriesRepo series.Repository,
	teams team.Repository,
	players player.Repository,
	nameMapping *NameMappingService,
	logger *logging.Logger,
) *UpsertService {
	if logger == nil {
		logger = logging.Default()
	}

	return &UpsertService{
		leagues:     leagues,
		clubs:       clubs,
		series:      seriesRepo,
		teams:       teams,
		players:     players,
		nameMapping: nameMapping,
		logger:      logger.WithComponent("usecase.upsert"),
	}
}

// ImportLeague upserts one snapshot's entity graph. Record-level problems
// skip the record and count it; only store failures surface as errors.
func (s *UpsertService) ImportLeague(ctx context.Context, snap source.Snapshot) (UpsertStats, error) {
	ctx, span := startUsecaseSpan(ctx, "UpsertService.ImportLeague")
	defer span.End()

	var stats UpsertStats

	code := strings.TrimSpace(snap.LeagueCode)
	if code == "" {
		return stats, errors.Wrap(ErrInvalidInput, "snapshot league code is required")
	}
	name := strings.TrimSpace(snap.LeagueName)
	if name == "" {
		name = code
	}

	l, inserted, err := s.leagues.Upsert(ctx, league.League{Code: code, Name: name})
	if err != nil {
		return stats, fmt.Errorf("upsert league %s: %w", code, err)
	}
	countOutcome(&stats.Leagues, inserted)

	clubIDs, err := s.upsertClubs(ctx, snap, &stats)
	if err != nil {
		return stats, err
	}
	seriesIDs, err := s.upsertSeries(ctx, l, snap, &stats)
	if err != nil {
		return stats, err
	}
	if err := s.associate(ctx, l.ID, clubIDs, seriesIDs); err != nil {
		return stats, err
	}
	teamIDs, err := s.upsertTeams(ctx, l, snap, clubIDs, seriesIDs, &stats)
	if err != nil {
		return stats, err
	}
	if err := s.upsertPlayers(ctx, l, snap, clubIDs, seriesIDs, teamIDs, &stats); err != nil {
		return stats, err
	}

	s.logger.InfoContext(ctx, "league imported",
		"league", code,
		"clubs_inserted", stats.Clubs.Inserted,
		"teams_inserted", stats.Teams.Inserted,
		"players_inserted", stats.Players.Inserted,
		"players_skipped", stats.Players.Skipped,
		"collisions", stats.Collisions,
	)

	return stats, nil
}

// clubNames unions club references from every source stream; a club seen
// only in schedules or standings still gets its row.
func clubNames(snap source.Snapshot) []string {
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

	for _, rec := range snap.Players {
		add(rec.Club)
	}
	for _, rec := range snap.Schedule {
		add(rec.Club)
	}
	for _, rec := range snap.Standings {
		add(rec.Club)
	}

	return ordered
}

func seriesNames(snap source.Snapshot) []string {
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

	for _, rec := range snap.Players {
		add(rec.Series)
	}
	for _, rec := range snap.Schedule {
		add(rec.Series)
	}
	for _, rec := range snap.Standings {
		add(rec.Series)
	}

	return ordered
}

func (s *UpsertService) upsertClubs(ctx context.Context, snap source.Snapshot, stats *UpsertStats) (map[string]int64, error) {
	ids := make(map[string]int64)
	for _, name := range clubNames(snap) {
		c, inserted, err := s.clubs.Upsert(ctx, club.Club{Name: name})
		if err != nil {
			return nil, fmt.Errorf("upsert club %s: %w", name, err)
		}
		countOutcome(&stats.Clubs, inserted)
		ids[name] = c.ID
	}

	return ids, nil
}

// upsertSeries resolves each source series name to its canonical form. A
// name that resolves nowhere is treated as a brand-new canonical series;
// the resolution diagnostic is logged so an administrator can add a mapping
// if the name was really a renamed convention.
func (s *UpsertService) upsertSeries(ctx context.Context, l league.League, snap source.Snapshot, stats *UpsertStats) (map[string]int64, error) {
	ids := make(map[string]int64)
	for _, name := range seriesNames(snap) {
		canonical, err := s.nameMapping.Resolve(ctx, l.ID, name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			s.logger.WarnContext(ctx, "series name unresolved, treating as new canonical series",
				"league", l.Code, "series", name, "diagnostic", err)
			canonical = name
		}

		row, inserted, err := s.series.Upsert(ctx, series.Series{Name: canonical})
		if err != nil {
			return nil, fmt.Errorf("upsert series %s: %w", canonical, err)
		}
		countOutcome(&stats.Series, inserted)
		ids[name] = row.ID
	}

	return ids, nil
}

// associate writes (club, league) and (series, league) rows for everything
// this snapshot touched, before teams reference them.
func (s *UpsertService) associate(ctx context.Context, leagueID int64, clubIDs, seriesIDs map[string]int64) error {
	for name, clubID := range clubIDs {
		if _, err := s.clubs.EnsureLeague(ctx, clubID, leagueID); err != nil {
			return fmt.Errorf("ensure club league for %s: %w", name, err)
		}
	}
	for name, seriesID := range seriesIDs {
		if _, err := s.series.EnsureLeague(ctx, seriesID, leagueID); err != nil {
			return fmt.Errorf("ensure series league for %s: %w", name, err)
		}
	}

	return nil
}

type tripleRef struct {
	clubID   int64
	seriesID int64
}

func (s *UpsertService) upsertTeams(
	ctx context.Context,
	l league.League,
	snap source.Snapshot,
	clubIDs, seriesIDs map[string]int64,
	stats *UpsertStats,
) (map[tripleRef]int64, error) {
	type teamCandidate struct {
		ref         tripleRef
		displayName string
	}

	seen := make(map[tripleRef]int)
	candidates := make([]teamCandidate, 0)
	add := func(clubName, seriesName, displayName string) {
		clubID, okClub := clubIDs[strings.TrimSpace(clubName)]
		seriesID, okSeries := seriesIDs[strings.TrimSpace(seriesName)]
		if !okClub || !okSeries {
			return
		}
		ref := tripleRef{clubID: clubID, seriesID: seriesID}
		displayName = strings.TrimSpace(displayName)
		if displayName == "" {
			displayName = strings.TrimSpace(clubName) + " " + strings.TrimSpace(seriesName)
		}
		if idx, ok := seen[ref]; ok {
			// Later record is authoritative for mutable attributes.
			candidates[idx].displayName = displayName
			return
		}
		seen[ref] = len(candidates)
		candidates = append(candidates, teamCandidate{ref: ref, displayName: displayName})
	}

	for _, rec := range snap.Players {
		add(rec.Club, rec.Series, rec.Team)
	}
	for _, rec := range snap.Schedule {
		add(rec.Club, rec.Series, rec.Team)
	}
	for _, rec := range snap.Standings {
		add(rec.Club, rec.Series, rec.Team)
	}

	ids := make(map[tripleRef]int64, len(candidates))
	for _, cand := range candidates {
		t, inserted, err := s.teams.Upsert(ctx, team.Team{
			ClubID:      cand.ref.clubID,
			SeriesID:    cand.ref.seriesID,
			LeagueID:    l.ID,
			DisplayName: cand.displayName,
			Alias:       fuzzy.Normalize(cand.displayName),
		})
		if err != nil {
			return nil, fmt.Errorf("upsert team %s: %w", cand.displayName, err)
		}
		countOutcome(&stats.Teams, inserted)
		ids[cand.ref] = t.ID
	}

	return ids, nil
}

// upsertPlayers writes roster entries last so team references resolve to
// the IDs established earlier in the same run. Duplicate external IDs in
// one batch collapse to a single write with the later record authoritative.
func (s *UpsertService) upsertPlayers(
	ctx context.Context,
	l league.League,
	snap source.Snapshot,
	clubIDs, seriesIDs map[string]int64,
	teamIDs map[tripleRef]int64,
	stats *UpsertStats,
) error {
	type resolved struct {
		rec      source.PlayerRecord
		clubID   int64
		seriesID int64
		teamID   int64
	}

	order := make([]string, 0, len(snap.Players))
	byExternalID := make(map[string]resolved, len(snap.Players))
	for _, rec := range snap.Players {
		clubID, okClub := clubIDs[strings.TrimSpace(rec.Club)]
		seriesID, okSeries := seriesIDs[strings.TrimSpace(rec.Series)]
		if !okClub || !okSeries {
			s.logger.WarnContext(ctx, "skipping player with unresolvable references",
				"league", l.Code, "club", rec.Club, "series", rec.Series,
				"error", errors.Wrapf(ErrSourceData, "player %s", rec.ExternalID))
			stats.Players.Skipped++
			continue
		}

		if prev, ok := byExternalID[rec.ExternalID]; ok {
			if prev.rec.Club != rec.Club || prev.rec.Series != rec.Series || prev.rec.Name != rec.Name {
				s.logger.WarnContext(ctx, "conflicting roster entries for one player, keeping the later",
					"league", l.Code,
					"error", errors.Wrapf(ErrIdentityCollision, "player %s", rec.ExternalID))
				stats.Collisions++
			}
		} else {
			order = append(order, rec.ExternalID)
		}
		byExternalID[rec.ExternalID] = resolved{
			rec:      rec,
			clubID:   clubID,
			seriesID: seriesID,
			teamID:   teamIDs[tripleRef{clubID: clubID, seriesID: seriesID}],
		}
	}

	for _, externalID := range order {
		item := byExternalID[externalID]
		_, inserted, err := s.players.Upsert(ctx, player.Player{
			ExternalID: item.rec.ExternalID,
			LeagueID:   l.ID,
			TeamID:     item.teamID,
			ClubID:     item.clubID,
			SeriesID:   item.seriesID,
			Name:       item.rec.Name,
			Rating:     item.rec.Rating,
		})
		if err != nil {
			return fmt.Errorf("upsert player %s: %w", externalID, err)
		}
		countOutcome(&stats.Players, inserted)
	}

	return nil
}

// PruneStats reports the maintenance pass over unreferenced rows.
type PruneStats struct {
	UnreferencedClubs  int `json:"unreferenced_clubs"`
	UnreferencedSeries int `json:"unreferenced_series"`
}

// PruneUnreferenced is the separate maintenance pass: the reconciliation
// run never deletes, so clubs and series that no team references anymore
// accumulate. This reports them; actual deletion stays a manual decision.
func (s *UpsertService) PruneUnreferenced(ctx context.Context) (PruneStats, error) {
	ctx, span := startUsecaseSpan(ctx, "UpsertService.PruneUnreferenced")
	defer span.End()

	var stats PruneStats

	teams, err := s.teams.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list teams: %w", err)
	}
	referencedClubs := make(map[int64]struct{}, len(teams))
	referencedSeries := make(map[int64]struct{}, len(teams))
	for _, t := range teams {
		referencedClubs[t.ClubID] = struct{}{}
		referencedSeries[t.SeriesID] = struct{}{}
	}

	clubs, err := s.clubs.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list clubs: %w", err)
	}
	for _, c := range clubs {
		if _, ok := referencedClubs[c.ID]; !ok {
			stats.UnreferencedClubs++
			s.logger.InfoContext(ctx, "club has no referencing teams", "club", c.Name)
		}
	}

	allSeries, err := s.series.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("list series: %w", err)
	}
	for _, item := range allSeries {
		if _, ok := referencedSeries[item.ID]; !ok {
			stats.UnreferencedSeries++
			s.logger.InfoContext(ctx, "series has no referencing teams", "series", item.Name)
		}
	}

	return stats, nil
}

func countOutcome(c *Counts, inserted bool) {
	if inserted {
		c.Inserted++
	} else {
		c.Updated++
	}
}

package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/leaguesync/internal/domain/club"
	"github.com/riskibarqy/leaguesync/internal/domain/content"
	"github.com/riskibarqy/leaguesync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
	"github.com/riskibarqy/leaguesync/internal/platform/resilience"
	"github.com/riskibarqy/leaguesync/internal/source"
)

// fixture wires every service over the in-memory fakes.
type fixture struct {
	leagues  *memory.LeagueRepository
	clubs    *memory.ClubRepository
	series   *memory.SeriesRepository
	teams    *memory.TeamRepository
	players  *memory.PlayerRepository
	matches  *memory.MatchRepository
	mappings *memory.NameMappingRepository
	content  *memory.ContentRepository
	backups  *memory.ContentBackupRepository

	nameMapping   *NameMappingService
	upserts       *UpsertService
	relationships *RelationshipService
	matchSvc      *MatchService
	backupSvc     *BackupService
	orphans       *OrphanService
}

func newFixture(contentRows ...content.Row) *fixture {
	logger := logging.NewNop()

	f := &fixture{
		leagues:  memory.NewLeagueRepository(),
		clubs:    memory.NewClubRepository(),
		series:   memory.NewSeriesRepository(),
		players:  memory.NewPlayerRepository(),
		matches:  memory.NewMatchRepository(),
		mappings: memory.NewNameMappingRepository(),
		content:  memory.NewContentRepository(contentRows...),
		backups:  memory.NewContentBackupRepository(),
	}
	f.teams = memory.NewTeamRepository(f.clubs, f.series, f.leagues)

	f.nameMapping = NewNameMappingService(f.mappings, f.series, f.leagues, logger)
	f.upserts = NewUpsertService(f.leagues, f.clubs, f.series, f.teams, f.players, f.nameMapping, logger)
	f.relationships = NewRelationshipService(f.clubs, f.series, f.teams, f.nameMapping, logger)
	f.matchSvc = NewMatchService(f.matches, f.teams, logger)
	f.backupSvc = NewBackupService(f.content, f.backups, f.teams, f.players, logger)
	f.orphans = NewOrphanService(f.leagues, f.clubs, f.series, f.teams, f.players, f.matches, f.content, logger)

	return f
}

func (f *fixture) runService(loader SnapshotLoader, cfg RunConfig) *RunService {
	cfg.Retry = resilience.RetryConfig{MaxAttempts: 1}
	return NewRunService(
		loader, f.upserts, f.relationships, f.matchSvc, f.backupSvc, f.orphans,
		f.leagues, nil, nil, cfg, logging.NewNop(),
	)
}

// stubLoader hands back canned snapshots.
type stubLoader struct {
	snapshots []source.Snapshot
	err       error
}

func (l *stubLoader) Load(_ context.Context, codes []string) ([]source.Snapshot, error) {
	if l.err != nil {
		return nil, l.err
	}
	if len(codes) == 0 {
		return l.snapshots, nil
	}

	wanted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		wanted[code] = struct{}{}
	}
	out := make([]source.Snapshot, 0, len(l.snapshots))
	for _, snap := range l.snapshots {
		if _, ok := wanted[snap.LeagueCode]; ok {
			out = append(out, snap)
		}
	}

	return out, nil
}

func clubNamed(name string) club.Club {
	return club.Club{Name: name}
}

func parseTestDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func metroSnapshot() source.Snapshot {
	return source.Snapshot{
		LeagueCode: "metro",
		LeagueName: "Metro League",
		Players: []source.PlayerRecord{
			{ExternalID: "p-1", Name: "Anna Berg", Club: "TTC Vikings", Series: "Series 3", Team: "Vikings 3", Rating: 1510},
			{ExternalID: "p-2", Name: "Jonas Falk", Club: "TTC Vikings", Series: "Series 3", Team: "Vikings 3", Rating: 1420},
			{ExternalID: "p-3", Name: "Mia Holm", Club: "Riverside", Series: "Series 7", Team: "Riverside 7", Rating: 1620},
		},
		Schedule: []source.ScheduleRecord{
			{Club: "TTC Vikings", Series: "Series 3", Team: "Vikings 3", Date: "2026-04-01", Opponent: "Riverside 7"},
			{Club: "Harbor TK", Series: "Series 7", Team: "Harbor 7", Date: "2026-04-02", Opponent: "Riverside 7"},
		},
		Standings: []source.StandingRecord{
			{Club: "Riverside", Series: "Series 7", Team: "Riverside 7", Won: 4, Lost: 1},
		},
	}
}

package app

import (
	"context"

	_ "github.com/lib/pq"

	"github.com/riskibarqy/leaguesync/internal/config"
	"github.com/riskibarqy/leaguesync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/leaguesync/internal/platform/id"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
	"github.com/riskibarqy/leaguesync/internal/platform/resilience"
	"github.com/riskibarqy/leaguesync/internal/source"
	"github.com/riskibarqy/leaguesync/internal/usecase"
)

var (
	_ postgres.DB            = (*RotatingDB)(nil)
	_ usecase.Rotator        = (*RotatingDB)(nil)
	_ usecase.SnapshotLoader = (*source.Loader)(nil)
)

// App bundles the wired reconciliation pipeline with the resources it owns.
type App struct {
	Runs   *usecase.RunService
	Loader *source.Loader

	db     *RotatingDB
	logger *logging.Logger
}

// Build opens the store and wires repositories and services into a
// RunService. The caller owns the returned App and must Close it.
func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := OpenRotatingDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	leagues := postgres.NewLeagueRepository(db)
	clubs := postgres.NewClubRepository(db)
	seriesRepo := postgres.NewSeriesRepository(db)
	teams := postgres.NewTeamRepository(db)
	players := postgres.NewPlayerRepository(db)
	matches := postgres.NewMatchRepository(db)
	mappings := postgres.NewNameMappingRepository(db)
	contentRepo := postgres.NewContentRepository(db)
	backups := postgres.NewContentBackupRepository(db)

	nameMapping := usecase.NewNameMappingService(mappings, seriesRepo, leagues, logger)
	upserts := usecase.NewUpsertService(leagues, clubs, seriesRepo, teams, players, nameMapping, logger)
	relationships := usecase.NewRelationshipService(clubs, seriesRepo, teams, nameMapping, logger)
	matchSvc := usecase.NewMatchService(matches, teams, logger)
	backupSvc := usecase.NewBackupService(contentRepo, backups, teams, players, logger)
	orphans := usecase.NewOrphanService(leagues, clubs, seriesRepo, teams, players, matches, contentRepo, logger)

	loader := source.NewLoader(cfg.InputDir, cfg.LoaderPoolSize, logger)

	runs := usecase.NewRunService(
		loader,
		upserts,
		relationships,
		matchSvc,
		backupSvc,
		orphans,
		leagues,
		id.NewRandomGenerator(),
		db,
		usecase.RunConfig{
			OrphanTolerance: cfg.OrphanTolerance,
			Retry: resilience.RetryConfig{
				MaxAttempts:    cfg.RetryMaxAttempts,
				InitialBackoff: cfg.RetryInitialBackoff,
				MaxBackoff:     cfg.RetryMaxBackoff,
			},
			Retryable:  postgres.IsTransient,
			Constraint: postgres.IsConstraintViolation,
		},
		logger,
	)

	return &App{Runs: runs, Loader: loader, db: db, logger: logger}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

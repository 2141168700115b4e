package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/leaguesync/internal/domain/league"
	"github.com/riskibarqy/leaguesync/internal/platform/id"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
	"github.com/riskibarqy/leaguesync/internal/platform/resilience"
	"github.com/riskibarqy/leaguesync/internal/source"
)

// SnapshotLoader abstracts the source loader for orchestration.
type SnapshotLoader interface {
	Load(ctx context.Context, codes []string) ([]source.Snapshot, error)
}

// Rotator closes and reopens the store connection. Rotation is resource
// hygiene against managed-database idle limits, invoked only at checkpoint
// boundaries, never mid-transaction.
type Rotator interface {
	Rotate(ctx context.Context) error
}

// RunOptions is the per-invocation CLI contract.
type RunOptions struct {
	// Leagues selects league codes; empty means everything discovered
	// under the input directory.
	Leagues []string
	// DryRun performs loading and analysis without writing.
	DryRun bool
	// SkipValidation makes the orphan auditor report without repairing.
	SkipValidation bool
}

// RunConfig carries the orchestration knobs out of app configuration.
type RunConfig struct {
	// OrphanTolerance is the unresolved-orphan count above which a run is
	// degraded instead of healthy.
	OrphanTolerance int
	Retry           resilience.RetryConfig
	// Retryable classifies transient store failures worth retrying.
	Retryable func(error) bool
	// Constraint classifies schema-drift failures; these abort the run.
	Constraint func(error) bool
}

// RunService executes one reconciliation run as a sequence of committed
// checkpoints: backup, entity upsert, relationship reconciliation, match
// dedup, restore, orphan audit. Each checkpoint commits independently so a
// crash leaves the last completed stage as the safe restore point; the
// backup stage runs first so the holding area outlives any later abort.
type RunService struct {
	loader        SnapshotLoader
	upserts       *UpsertService
	relationships *RelationshipService
	matches       *MatchService
	backups       *BackupService
	orphans       *OrphanService
	leagues       league.Repository
	runIDs        id.Generator
	rotator       Rotator
	cfg           RunConfig
	logger        *logging.Logger
}

func NewRunService(
	loader SnapshotLoader,
	upserts *UpsertService,
	relationships *RelationshipService,
	matches *MatchService,
	backups *BackupService,
	orphans *OrphanService,
	leagues league.Repository,
	runIDs id.Generator,
	rotator Rotator,
	cfg RunConfig,
	logger *logging.Logger,
) *RunService {
	if logger == nil {
		logger = logging.Default()
	}
	if runIDs == nil {
		runIDs = id.NewRandomGenerator()
	}
	cfg.Retry = resilience.NormalizeRetryConfig(cfg.Retry)
	if cfg.Retryable == nil {
		cfg.Retryable = func(error) bool { return false }
	}
	if cfg.Constraint == nil {
		cfg.Constraint = func(error) bool { return false }
	}

	return &RunService{
		loader:        loader,
		upserts:       upserts,
		relationships: relationships,
		matches:       matches,
		backups:       backups,
		orphans:       orphans,
		leagues:       leagues,
		runIDs:        runIDs,
		rotator:       rotator,
		cfg:           cfg,
		logger:        logger.WithComponent("usecase.run"),
	}
}

// Run executes the full reconciliation. The returned report is populated
// even on failure, up to the last stage that ran.
func (s *RunService) Run(ctx context.Context, opts RunOptions) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "RunService.Run")
	defer span.End()

	runID, err := s.runIDs.NewID()
	if err != nil {
		return RunReport{Status: StatusFailed}, fmt.Errorf("generate run id: %w", err)
	}

	report := RunReport{RunID: runID, DryRun: opts.DryRun}
	logger := s.logger.With("run_id", runID)
	logger.InfoContext(ctx, "reconciliation run starting",
		"leagues", opts.Leagues, "dry_run", opts.DryRun, "skip_validation", opts.SkipValidation)

	snapshots, err := s.loader.Load(ctx, opts.Leagues)
	if err != nil {
		return s.fail(ctx, report, fmt.Errorf("load snapshots: %w", err))
	}
	for _, snap := range snapshots {
		report.Leagues = append(report.Leagues, snap.LeagueCode)
		report.SourceSkipped += len(snap.Skipped)
	}

	if opts.DryRun {
		return s.dryRun(ctx, report, snapshots, logger)
	}

	// Checkpoint 1: backup before anything destructive, so a full rollback
	// to pre-run state stays possible after partial commits.
	if err := s.checkpoint(ctx, "backup", func(ctx context.Context) error {
		backedUp, err := s.backups.Backup(ctx, runID)
		if err != nil {
			return err
		}
		report.Restore.BackedUp = backedUp
		return nil
	}); err != nil {
		return s.fail(ctx, report, err)
	}

	// Checkpoint 2: entity upserts in dependency order, league by league.
	if err := s.checkpoint(ctx, "upsert", func(ctx context.Context) error {
		for _, snap := range snapshots {
			stats, err := s.upserts.ImportLeague(ctx, snap)
			report.Upserts.merge(stats)
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return s.fail(ctx, report, err)
	}

	// Checkpoint 3: association reconciliation.
	if err := s.checkpoint(ctx, "relationships", func(ctx context.Context) error {
		for _, snap := range snapshots {
			l, err := s.leagueFor(ctx, snap.LeagueCode)
			if err != nil {
				return err
			}
			stats, err := s.relationships.Reconcile(ctx, l, snap)
			report.Relationships.merge(stats)
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return s.fail(ctx, report, err)
	}

	// Checkpoint 4: match dedup.
	if err := s.checkpoint(ctx, "matches", func(ctx context.Context) error {
		for _, snap := range snapshots {
			l, err := s.leagueFor(ctx, snap.LeagueCode)
			if err != nil {
				return err
			}
			stats, err := s.matches.ImportMatches(ctx, l, snap)
			report.Matches.add(stats.Counts)
			report.MatchesFlagged += stats.Flagged
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return s.fail(ctx, report, err)
	}

	// Checkpoint 5: restore user content against post-import teams.
	if err := s.checkpoint(ctx, "restore", func(ctx context.Context) error {
		stats, err := s.backups.Restore(ctx, runID)
		if err != nil {
			return err
		}
		backedUp := report.Restore.BackedUp
		report.Restore = stats
		report.Restore.BackedUp = backedUp
		return nil
	}); err != nil {
		return s.fail(ctx, report, err)
	}

	// Checkpoint 6: orphan audit gates overall health.
	if err := s.checkpoint(ctx, "audit", func(ctx context.Context) error {
		stats, err := s.orphans.Audit(ctx, !opts.SkipValidation)
		if err != nil {
			return err
		}
		report.Orphans = stats
		return nil
	}); err != nil {
		return s.fail(ctx, report, err)
	}

	report.Status = StatusHealthy
	if report.Orphans.Unresolved > s.cfg.OrphanTolerance || report.Restore.Unresolved > 0 {
		report.Status = StatusDegraded
	}
	logger.InfoContext(ctx, "reconciliation run finished", "status", report.Status)

	return report, nil
}

// dryRun performs the read-only analysis: parse counts, series-name
// resolution checks and the orphan report, with no writes at all.
func (s *RunService) dryRun(ctx context.Context, report RunReport, snapshots []source.Snapshot, logger *logging.Logger) (RunReport, error) {
	for _, snap := range snapshots {
		logger.InfoContext(ctx, "dry run: snapshot analyzed",
			"league", snap.LeagueCode,
			"players", len(snap.Players),
			"matches", len(snap.Matches),
			"schedule", len(snap.Schedule),
			"standings", len(snap.Standings),
			"skipped", len(snap.Skipped),
		)
	}

	stats, err := s.orphans.Audit(ctx, false)
	if err != nil {
		return s.fail(ctx, report, err)
	}
	report.Orphans = stats

	report.Status = StatusHealthy
	if report.Orphans.Unresolved > s.cfg.OrphanTolerance {
		report.Status = StatusDegraded
	}

	return report, nil
}

// checkpoint runs one stage with bounded retry for transient store errors
// and rotates the connection at the stage boundary.
func (s *RunService) checkpoint(ctx context.Context, name string, fn func(context.Context) error) error {
	err := resilience.Retry(ctx, s.cfg.Retry, s.cfg.Retryable, fn)
	if err != nil {
		if s.cfg.Constraint(err) {
			return errors.Mark(fmt.Errorf("checkpoint %s: %w", name, err), ErrConstraintViolation)
		}
		if s.cfg.Retryable(err) {
			return errors.Mark(fmt.Errorf("checkpoint %s: retries exhausted: %w", name, err), ErrTransientConnection)
		}
		return fmt.Errorf("checkpoint %s: %w", name, err)
	}

	if s.rotator != nil {
		if err := s.rotator.Rotate(ctx); err != nil {
			return fmt.Errorf("rotate store connection after %s: %w", name, err)
		}
	}
	s.logger.DebugContext(ctx, "checkpoint committed", "stage", name)

	return nil
}

func (s *RunService) leagueFor(ctx context.Context, code string) (league.League, error) {
	l, found, err := s.leagues.GetByCode(ctx, code)
	if err != nil {
		return league.League{}, fmt.Errorf("get league %s: %w", code, err)
	}
	if !found {
		return league.League{}, errors.Wrapf(ErrNotFound, "league %s", code)
	}

	return l, nil
}

func (s *RunService) fail(ctx context.Context, report RunReport, err error) (RunReport, error) {
	report.Status = StatusFailed
	report.Failure = err.Error()
	s.logger.ErrorContext(ctx, "reconciliation run failed", "error", err)

	return report, err
}

// ExitCode maps a run status onto the process exit contract: 0 healthy,
// 3 degraded, 1 failed.
func ExitCode(status RunStatus) int {
	switch status {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 3
	default:
		return 1
	}
}

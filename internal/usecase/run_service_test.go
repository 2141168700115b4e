package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/leaguesync/internal/domain/content"
	"github.com/riskibarqy/leaguesync/internal/source"
)

type countingRotator struct {
	rotations int
}

func (r *countingRotator) Rotate(context.Context) error {
	r.rotations++
	return nil
}

func snapshotWithMatches() source.Snapshot {
	snap := metroSnapshot()
	snap.Matches = []source.MatchRecord{matchRecord("M-1001", []string{"p-1", "p-3"})}
	return snap
}

func TestRunHealthyEndToEnd(t *testing.T) {
	f := newFixture()
	loader := &stubLoader{snapshots: []source.Snapshot{snapshotWithMatches()}}
	svc := f.runService(loader, RunConfig{})

	report, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, []string{"metro"}, report.Leagues)
	assert.Equal(t, 3, report.Upserts.Teams.Inserted)
	assert.Equal(t, 1, report.Matches.Inserted)
	assert.Zero(t, report.Orphans.Unresolved)
	assert.NotEmpty(t, report.RunID)

	rendered, err := report.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, `"status": "healthy"`)
}

// Running twice on identical input adds nothing on the second pass and
// keeps every surrogate ID.
func TestRunIsIdempotent(t *testing.T) {
	f := newFixture()
	loader := &stubLoader{snapshots: []source.Snapshot{snapshotWithMatches()}}
	svc := f.runService(loader, RunConfig{})
	ctx := context.Background()

	_, err := svc.Run(ctx, RunOptions{})
	require.NoError(t, err)
	teamsBefore, err := f.teams.List(ctx)
	require.NoError(t, err)

	report, err := svc.Run(ctx, RunOptions{})
	require.NoError(t, err)

	assert.Zero(t, report.Upserts.Teams.Inserted)
	assert.Zero(t, report.Upserts.Players.Inserted)
	assert.Zero(t, report.Matches.Inserted)

	teamsAfter, err := f.teams.List(ctx)
	require.NoError(t, err)
	require.Len(t, teamsAfter, len(teamsBefore))
	for i := range teamsBefore {
		assert.Equal(t, teamsBefore[i].ID, teamsAfter[i].ID)
	}
}

// A poll referencing a stable team survives the run with its team_id intact.
func TestRunPreservesContentTeamRef(t *testing.T) {
	f := newFixture()
	loader := &stubLoader{snapshots: []source.Snapshot{snapshotWithMatches()}}
	svc := f.runService(loader, RunConfig{})
	ctx := context.Background()

	_, err := svc.Run(ctx, RunOptions{})
	require.NoError(t, err)

	teams, err := f.teams.List(ctx)
	require.NoError(t, err)
	teamID := teams[0].ID
	require.NoError(t, f.content.Restore(ctx, content.Row{
		Kind: content.KindPoll, ID: 42, TeamID: teamID, CreatedBy: "Anna Berg", Body: "vote",
	}))

	report, err := svc.Run(ctx, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, 1, report.Restore.BackedUp)
	assert.Equal(t, 1, report.Restore.Restored)

	row, found, err := f.content.Get(ctx, content.KindPoll, 42)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, teamID, row.TeamID)
}

// Unresolved restorations degrade the run instead of passing silently.
func TestRunDegradedOnUnresolvedRestore(t *testing.T) {
	f := newFixture(content.Row{
		Kind: content.KindPoll, ID: 7, TeamID: 999, CreatedBy: "Nobody Known", Body: "orphaned",
	})
	loader := &stubLoader{snapshots: []source.Snapshot{snapshotWithMatches()}}
	svc := f.runService(loader, RunConfig{})

	report, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, 1, report.Restore.Unresolved)
	assert.Equal(t, 3, ExitCode(report.Status))
}

func TestRunToleranceGatesDegraded(t *testing.T) {
	f := newFixture(content.Row{
		Kind: content.KindPoll, ID: 7, TeamID: 999, CreatedBy: "Nobody Known", Body: "orphaned",
	})
	loader := &stubLoader{snapshots: []source.Snapshot{snapshotWithMatches()}}
	// The restore stage resolves nothing for this row, but the audit runs
	// after it and nulls the reference; tolerance 1 absorbs the orphan
	// while the unresolved restoration still degrades.
	svc := f.runService(loader, RunConfig{OrphanTolerance: 1})

	report, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, report.Status)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	f := newFixture()
	loader := &stubLoader{snapshots: []source.Snapshot{snapshotWithMatches()}}
	svc := f.runService(loader, RunConfig{})
	ctx := context.Background()

	report, err := svc.Run(ctx, RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, report.Status)
	assert.True(t, report.DryRun)

	teams, err := f.teams.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)
	leagues, err := f.leagues.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, leagues)
	assert.Empty(t, f.backups.All())
}

func TestRunSkipValidationReportsOnly(t *testing.T) {
	f := newFixture(content.Row{
		Kind: content.KindPoll, ID: 7, TeamID: 999, CreatedBy: "Nobody Known", Body: "orphaned",
	})
	loader := &stubLoader{snapshots: []source.Snapshot{snapshotWithMatches()}}
	svc := f.runService(loader, RunConfig{})

	report, err := svc.Run(context.Background(), RunOptions{SkipValidation: true})
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, report.Status)
	assert.Zero(t, report.Orphans.Repaired)
}

func TestRunLoaderFailureIsFatal(t *testing.T) {
	f := newFixture()
	loader := &stubLoader{err: errors.New("input dir unreadable")}
	svc := f.runService(loader, RunConfig{})

	report, err := svc.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, report.Status)
	assert.Contains(t, report.Failure, "input dir unreadable")
	assert.Equal(t, 1, ExitCode(report.Status))
}

func TestRunRotatesAtCheckpointBoundaries(t *testing.T) {
	f := newFixture()
	loader := &stubLoader{snapshots: []source.Snapshot{snapshotWithMatches()}}
	rotator := &countingRotator{}
	svc := NewRunService(
		loader, f.upserts, f.relationships, f.matchSvc, f.backupSvc, f.orphans,
		f.leagues, nil, rotator, RunConfig{}, nil,
	)

	_, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 6, rotator.rotations, "one rotation per committed checkpoint")
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, 0, ExitCode(StatusHealthy))
	assert.Equal(t, 3, ExitCode(StatusDegraded))
	assert.Equal(t, 1, ExitCode(StatusFailed))
}

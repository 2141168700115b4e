package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/leaguesync/internal/domain/content"
)

func pollFor(teamID int64, createdBy, body string) content.Row {
	return content.Row{
		Kind:      content.KindPoll,
		ID:        101,
		TeamID:    teamID,
		CreatedBy: createdBy,
		Body:      body,
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

// A content row whose team's natural key is unchanged keeps its exact
// team_id across backup and restore.
func TestBackupRestoreFidelity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	importedLeague(t, f)

	teams, err := f.teams.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, teams)
	teamID := teams[0].ID

	poll := pollFor(teamID, "Anna Berg", "Friday lineup vote")
	require.NoError(t, f.content.Restore(ctx, poll))

	backedUp, err := f.backupSvc.Backup(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, backedUp)

	// Re-import: natural keys unchanged, surrogate IDs preserved.
	_, err = f.upserts.ImportLeague(ctx, metroSnapshot())
	require.NoError(t, err)

	stats, err := f.backupSvc.Restore(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Restored)
	assert.Zero(t, stats.Remapped)
	assert.Zero(t, stats.Unresolved)

	got, found, err := f.content.Get(ctx, content.KindPoll, poll.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, teamID, got.TeamID)

	// Confirmed restoration clears the holding area.
	assert.Empty(t, f.backups.All())
}

// A row whose live copy was lost during the replace is re-inserted verbatim
// with its original identifier.
func TestRestoreReinsertsLostRow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	importedLeague(t, f)

	teams, err := f.teams.List(ctx)
	require.NoError(t, err)
	teamID := teams[0].ID

	poll := pollFor(teamID, "Anna Berg", "Friday lineup vote")
	require.NoError(t, f.content.Restore(ctx, poll))

	_, err = f.backupSvc.Backup(ctx, "run-2")
	require.NoError(t, err)

	f.content.Delete(content.KindPoll, poll.ID)

	stats, err := f.backupSvc.Restore(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Restored)

	got, found, err := f.content.Get(ctx, content.KindPoll, poll.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, poll.ID, got.ID)
	assert.Equal(t, poll.Body, got.Body)
	assert.Equal(t, teamID, got.TeamID)
}

// When the creator still has a team assignment, a row whose team vanished
// is remapped to the creator's current team.
func TestRestoreFallsBackToCreatorTeam(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	importedLeague(t, f)

	// Points at a team id that never existed, so no natural key was
	// captured and name matching has nothing to work with.
	poll := pollFor(999, "Anna Berg", "pingis friday")
	require.NoError(t, f.content.Restore(ctx, poll))

	_, err := f.backupSvc.Backup(ctx, "run-3")
	require.NoError(t, err)

	stats, err := f.backupSvc.Restore(ctx, "run-3")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Restored)
	assert.Equal(t, 1, stats.Remapped)

	anna, found, err := f.players.GetByExternalID(ctx, "p-1", 1)
	require.NoError(t, err)
	require.True(t, found)

	got, _, err := f.content.Get(ctx, content.KindPoll, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, anna.TeamID, got.TeamID)
}

// A row matched by no strategy keeps a null team reference and stays in the
// holding area marked for manual triage, never silently dropped.
func TestRestoreUnmatchedRowParkedForTriage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	importedLeague(t, f)

	poll := pollFor(999, "Nobody Known", "no hints here")
	require.NoError(t, f.content.Restore(ctx, poll))

	_, err := f.backupSvc.Backup(ctx, "run-4")
	require.NoError(t, err)

	stats, err := f.backupSvc.Restore(ctx, "run-4")
	require.NoError(t, err)
	assert.Zero(t, stats.Restored)
	assert.Equal(t, 1, stats.Unresolved)

	got, found, err := f.content.Get(ctx, content.KindPoll, poll.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Zero(t, got.TeamID)

	remaining := f.backups.All()
	require.Len(t, remaining, 1)
	assert.True(t, remaining[0].Unresolved)
}

// A pending backup from a crashed earlier run is picked up by the next
// run's restore step.
func TestRestoreAppliesEarlierRunsBackup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	importedLeague(t, f)

	teams, err := f.teams.List(ctx)
	require.NoError(t, err)
	teamID := teams[0].ID

	poll := pollFor(teamID, "Anna Berg", "carried over")
	require.NoError(t, f.content.Restore(ctx, poll))

	_, err = f.backupSvc.Backup(ctx, "crashed-run")
	require.NoError(t, err)

	stats, err := f.backupSvc.Restore(ctx, "next-run")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Restored)
	assert.Empty(t, f.backups.All())
}

// A backup carrying a stale series spelling ("Serie 3" vs "Series 3") misses
// the natural key but still lands on the right team through club/series name
// similarity.
func TestRestoreMatchesRenamedSeriesBySimilarity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	importedLeague(t, f)

	details, err := f.teams.ListDetailed(ctx)
	require.NoError(t, err)
	var vikingsID int64
	for _, d := range details {
		if d.ClubName == "TTC Vikings" {
			vikingsID = d.ID
		}
	}
	require.NotZero(t, vikingsID)

	poll := pollFor(999, "Nobody Known", "pre-rename vote")
	require.NoError(t, f.content.Restore(ctx, poll))

	payload, err := sonic.MarshalString(poll)
	require.NoError(t, err)
	require.NoError(t, f.backups.SaveAll(ctx, []content.Backup{{
		RunID:      "run-5",
		Kind:       content.KindPoll,
		ContentID:  poll.ID,
		TeamID:     999,
		CreatedBy:  "Nobody Known",
		ClubName:   "TTC Vikings",
		SeriesName: "Serie 3",
		LeagueCode: "metro",
		Payload:    payload,
		BackedUpAt: time.Now(),
	}}))

	stats, err := f.backupSvc.Restore(ctx, "run-5")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Restored)
	assert.Equal(t, 1, stats.Remapped)
	assert.Zero(t, stats.Unresolved)

	got, found, err := f.content.Get(ctx, content.KindPoll, poll.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, vikingsID, got.TeamID)
}

// With no natural key, no name match and an unknown creator, a series number
// embedded in the content's free text places the row, provided exactly one
// team plays under that number.
func TestRestoreMatchesBySeriesNumberInBody(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	importedLeague(t, f)

	details, err := f.teams.ListDetailed(ctx)
	require.NoError(t, err)
	var vikingsID int64
	for _, d := range details {
		if d.SeriesName == "Series 3" {
			vikingsID = d.ID
		}
	}
	require.NotZero(t, vikingsID)

	// Dead team id, unknown creator: only the body's "3" is left to go on.
	// Series 7 fields two teams, so "7" would stay ambiguous; "3" does not.
	poll := pollFor(999, "Nobody Known", "practice for series 3")
	require.NoError(t, f.content.Restore(ctx, poll))

	_, err = f.backupSvc.Backup(ctx, "run-6")
	require.NoError(t, err)

	stats, err := f.backupSvc.Restore(ctx, "run-6")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Restored)
	assert.Equal(t, 1, stats.Remapped)
	assert.Zero(t, stats.Unresolved)

	got, found, err := f.content.Get(ctx, content.KindPoll, poll.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, vikingsID, got.TeamID)
}

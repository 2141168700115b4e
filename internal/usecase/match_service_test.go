package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/leaguesync/internal/domain/league"
	"github.com/riskibarqy/leaguesync/internal/source"
)

func importedLeague(t *testing.T, f *fixture) league.League {
	t.Helper()
	ctx := context.Background()
	_, err := f.upserts.ImportLeague(ctx, metroSnapshot())
	require.NoError(t, err)
	l, found, err := f.leagues.GetByCode(ctx, "metro")
	require.NoError(t, err)
	require.True(t, found)

	return l
}

func matchRecord(sourceID string, playerIDs []string) source.MatchRecord {
	rec := source.MatchRecord{
		SourceID:  sourceID,
		Date:      "2026-03-14",
		HomeTeam:  "Vikings 3",
		AwayTeam:  "Riverside 7",
		PlayerIDs: playerIDs,
		Score:     "6-4",
	}
	parsed, _ := parseTestDate(rec.Date)
	rec.ParsedDate = parsed

	return rec
}

// Importing the same real-world match with a source identifier and again
// without one yields a single stored row.
func TestImportMatchesDedupAcrossIdentities(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	first := source.Snapshot{Matches: []source.MatchRecord{matchRecord("M-1001", []string{"p-1", "p-3"})}}
	stats, err := f.matchSvc.ImportMatches(ctx, l, first)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Counts.Inserted)

	second := source.Snapshot{Matches: []source.MatchRecord{matchRecord("", []string{"p-3", "p-1"})}}
	stats, err = f.matchSvc.ImportMatches(ctx, l, second)
	require.NoError(t, err)
	assert.Zero(t, stats.Counts.Inserted)
	assert.Equal(t, 1, stats.Counts.Updated)

	matches, err := f.matches.ListByLeague(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "m1001", matches[0].SourceKey, "source key survives the keyless re-import")
	assert.NotZero(t, matches[0].HomeTeamID)
	assert.NotZero(t, matches[0].AwayTeamID)
}

// A cosmetically different source identifier still updates in place via
// the normalized key, taking the newer score.
func TestImportMatchesCosmeticSourceIDUpdatesInPlace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	first := source.Snapshot{Matches: []source.MatchRecord{matchRecord("M-1001", []string{"p-1"})}}
	_, err := f.matchSvc.ImportMatches(ctx, l, first)
	require.NoError(t, err)

	rec := matchRecord("m 1001", []string{"p-1"})
	rec.Score = "6-5"
	stats, err := f.matchSvc.ImportMatches(ctx, l, source.Snapshot{Matches: []source.MatchRecord{rec}})
	require.NoError(t, err)
	assert.Zero(t, stats.Counts.Inserted)

	matches, err := f.matches.ListByLeague(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "6-5", matches[0].Score)
}

// Player-less matches dedup on date, teams and score alone and carry the
// review flag because that identity can falsely merge.
func TestImportMatchesPlayerlessFlaggedForReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	snap := source.Snapshot{Matches: []source.MatchRecord{matchRecord("", nil)}}
	stats, err := f.matchSvc.ImportMatches(ctx, l, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Counts.Inserted)
	assert.Equal(t, 1, stats.Flagged)

	stats, err = f.matchSvc.ImportMatches(ctx, l, snap)
	require.NoError(t, err)
	assert.Zero(t, stats.Counts.Inserted)

	matches, err := f.matches.ListByLeague(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].ReviewFlag)
}

func TestImportMatchesSkipsInvalidRecord(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	rec := matchRecord("", []string{"p-1"})
	rec.HomeTeam = ""
	stats, err := f.matchSvc.ImportMatches(ctx, l, source.Snapshot{Matches: []source.MatchRecord{rec}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Counts.Skipped)
	assert.Zero(t, stats.Counts.Inserted)
}

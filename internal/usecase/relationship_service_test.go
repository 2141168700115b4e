package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/leaguesync/internal/source"
)

// A team appearing in roster and schedule but not standings still ends up
// with exactly one association row per pair.
func TestReconcileAssociationCompleteness(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	snap := source.Snapshot{
		LeagueCode: "metro",
		Players: []source.PlayerRecord{
			{ExternalID: "p-1", Name: "Anna Berg", Club: "Club A", Series: "Series 3"},
		},
		Schedule: []source.ScheduleRecord{
			{Club: "Club A", Series: "Series 3", Date: "2026-04-01"},
		},
	}
	_, err := f.upserts.ImportLeague(ctx, snap)
	require.NoError(t, err)

	l, found, err := f.leagues.GetByCode(ctx, "metro")
	require.NoError(t, err)
	require.True(t, found)

	stats, err := f.relationships.Reconcile(ctx, l, snap)
	require.NoError(t, err)
	// ImportLeague already associated everything; reconcile adds nothing.
	assert.Zero(t, stats.ClubLeaguesAdded)
	assert.Zero(t, stats.SeriesLeaguesAdded)

	clubPairs, err := f.clubs.LeaguePairs(ctx)
	require.NoError(t, err)
	assert.Len(t, clubPairs, 1)
	seriesPairs, err := f.series.LeaguePairs(ctx)
	require.NoError(t, err)
	assert.Len(t, seriesPairs, 1)
}

// Clubs that only appear in the schedule stream for a run still get their
// association repaired by the reconciler.
func TestReconcileAddsScheduleOnlyPairs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.upserts.ImportLeague(ctx, metroSnapshot())
	require.NoError(t, err)

	l, found, err := f.leagues.GetByCode(ctx, "metro")
	require.NoError(t, err)
	require.True(t, found)

	// Second snapshot mentions a known club only in the schedule, after
	// someone manually removed its association row.
	harbor, found, err := f.clubs.GetByName(ctx, "Harbor TK")
	require.NoError(t, err)
	require.True(t, found)

	snap := source.Snapshot{
		LeagueCode: "metro",
		Schedule: []source.ScheduleRecord{
			{Club: "Harbor TK", Series: "Series 7", Date: "2026-04-09"},
		},
	}

	stats, err := f.relationships.Reconcile(ctx, l, snap)
	require.NoError(t, err)
	assert.Zero(t, stats.ClubLeaguesAdded) // already associated by import

	pairs, err := f.clubs.LeaguePairs(ctx)
	require.NoError(t, err)
	foundHarbor := false
	for _, pair := range pairs {
		if pair.ClubID == harbor.ID && pair.LeagueID == l.ID {
			foundHarbor = true
		}
	}
	assert.True(t, foundHarbor)
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	snap := metroSnapshot()
	_, err := f.upserts.ImportLeague(ctx, snap)
	require.NoError(t, err)

	l, _, err := f.leagues.GetByCode(ctx, "metro")
	require.NoError(t, err)

	first, err := f.relationships.Reconcile(ctx, l, snap)
	require.NoError(t, err)
	second, err := f.relationships.Reconcile(ctx, l, snap)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Zero(t, second.ClubLeaguesAdded)
	assert.Zero(t, second.SeriesLeaguesAdded)
}

package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/leaguesync/internal/source"
)

func TestImportLeagueFirstRunInsertsGraph(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	stats, err := f.upserts.ImportLeague(ctx, metroSnapshot())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Leagues.Inserted)
	assert.Equal(t, 3, stats.Clubs.Inserted)  // Vikings, Riverside, Harbor
	assert.Equal(t, 2, stats.Series.Inserted) // Series 3, Series 7
	assert.Equal(t, 3, stats.Teams.Inserted)
	assert.Equal(t, 3, stats.Players.Inserted)
	assert.Zero(t, stats.Players.Skipped)
	assert.Zero(t, stats.Collisions)

	players, err := f.players.List(ctx)
	require.NoError(t, err)
	for _, p := range players {
		assert.NotZero(t, p.TeamID, "player %s should be assigned a team", p.ExternalID)
	}
}

func TestImportLeagueIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.upserts.ImportLeague(ctx, metroSnapshot())
	require.NoError(t, err)

	teamsBefore, err := f.teams.List(ctx)
	require.NoError(t, err)

	stats, err := f.upserts.ImportLeague(ctx, metroSnapshot())
	require.NoError(t, err)

	assert.Zero(t, stats.Leagues.Inserted)
	assert.Zero(t, stats.Clubs.Inserted)
	assert.Zero(t, stats.Series.Inserted)
	assert.Zero(t, stats.Teams.Inserted)
	assert.Zero(t, stats.Players.Inserted)

	teamsAfter, err := f.teams.List(ctx)
	require.NoError(t, err)
	require.Len(t, teamsAfter, len(teamsBefore))
	for i := range teamsBefore {
		assert.Equal(t, teamsBefore[i].ID, teamsAfter[i].ID, "surrogate id must survive the second run")
	}
}

func TestImportLeagueDuplicateExternalIDIsCollision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	snap := metroSnapshot()
	snap.Players = append(snap.Players, source.PlayerRecord{
		ExternalID: "p-1", Name: "Anna Berg", Club: "Riverside", Series: "Series 7", Team: "Riverside 7",
	})

	stats, err := f.upserts.ImportLeague(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Collisions)
	assert.Equal(t, 3, stats.Players.Inserted)

	// Later record is authoritative.
	p, found, err := f.players.GetByExternalID(ctx, "p-1", 1)
	require.NoError(t, err)
	require.True(t, found)
	riverside, found, err := f.clubs.GetByName(ctx, "Riverside")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, riverside.ID, p.ClubID)
}

func TestImportLeagueSkipsUnresolvableRoster(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	snap := metroSnapshot()
	snap.Players = append(snap.Players, source.PlayerRecord{
		ExternalID: "p-9", Name: "Ghost", Club: "", Series: "Series 3",
	})

	stats, err := f.upserts.ImportLeague(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Players.Skipped)
	assert.Equal(t, 3, stats.Players.Inserted)
}

func TestPruneUnreferencedReportsOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.upserts.ImportLeague(ctx, metroSnapshot())
	require.NoError(t, err)

	// A club no team references anymore.
	_, _, err = f.clubs.Upsert(ctx, clubNamed("Defunct BTK"))
	require.NoError(t, err)

	stats, err := f.upserts.PruneUnreferenced(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UnreferencedClubs)
	assert.Zero(t, stats.UnreferencedSeries)

	// Reporting must not have deleted anything.
	_, found, err := f.clubs.GetByName(ctx, "Defunct BTK")
	require.NoError(t, err)
	assert.True(t, found)
}

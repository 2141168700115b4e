package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/leaguesync/internal/domain/namemapping"
)

func TestResolveExactMatchWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	got, err := f.nameMapping.Resolve(ctx, l.ID, "Series 3")
	require.NoError(t, err)
	assert.Equal(t, "Series 3", got)
}

func TestResolveUsesPersistedMapping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	_, err := f.nameMapping.AddMapping(ctx, namemapping.Mapping{
		LeagueID:      l.ID,
		SourceName:    "Division 16",
		CanonicalName: "Series 3",
	})
	require.NoError(t, err)

	got, err := f.nameMapping.Resolve(ctx, l.ID, "Division 16")
	require.NoError(t, err)
	assert.Equal(t, "Series 3", got)
}

func TestResolveFuzzyUniqueCandidate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	got, err := f.nameMapping.Resolve(ctx, l.ID, "series 3 SW")
	require.NoError(t, err)
	assert.Equal(t, "Series 3", got)
}

// A renamed convention with no mapping entry fails with a diagnostic; after
// the administrative mapping is added, the same resolution succeeds.
func TestResolveFailureThenMappingAdded(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	_, err := f.nameMapping.Resolve(ctx, l.ID, "Division 9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.nameMapping.AddMapping(ctx, namemapping.Mapping{
		LeagueID:      l.ID,
		SourceName:    "Division 9",
		CanonicalName: "Series 3",
	})
	require.NoError(t, err)

	got, err := f.nameMapping.Resolve(ctx, l.ID, "Division 9")
	require.NoError(t, err)
	assert.Equal(t, "Series 3", got)
}

// The failure diagnostic names near-miss canonical series from other
// leagues to aid manual mapping entry.
func TestResolveDiagnosticListsOtherLeagues(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)

	// A second league carrying the canonical form of the queried name.
	snap := metroSnapshot()
	snap.LeagueCode = "coastal"
	snap.LeagueName = "Coastal League"
	for i := range snap.Players {
		snap.Players[i].Series = "Division 9 North"
	}
	snap.Schedule = nil
	snap.Standings = nil
	_, err := f.upserts.ImportLeague(ctx, snap)
	require.NoError(t, err)

	_, err = f.nameMapping.Resolve(ctx, l.ID, "Division 9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coastal/Division 9 North")
}

func TestAddMappingValidatesInput(t *testing.T) {
	f := newFixture()

	_, err := f.nameMapping.AddMapping(context.Background(), namemapping.Mapping{LeagueID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

package usecase

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/riskibarqy/leaguesync/internal/platform/logging"
	"github.com/riskibarqy/leaguesync/internal/source"
)

func observedLogger() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return logging.FromZap(zap.New(core)), logs
}

func loggedErrors(logs *observer.ObservedLogs) []error {
	var out []error
	for _, entry := range logs.All() {
		for _, field := range entry.Context {
			if err, ok := field.Interface.(error); ok {
				out = append(out, err)
			}
		}
	}

	return out
}

func anyErrorIs(errs []error, target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// Conflicting roster entries for one external id log a warning marked with
// the identity-collision sentinel, so log pipelines can alert on it.
func TestCollisionWarningCarriesSentinel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	logger, logs := observedLogger()
	svc := NewUpsertService(f.leagues, f.clubs, f.series, f.teams, f.players, f.nameMapping, logger)

	snap := metroSnapshot()
	snap.Players = append(snap.Players, source.PlayerRecord{
		ExternalID: "p-1", Name: "Anna Bergstrom",
		Club: "TTC Vikings", Series: "Series 3", Team: "Vikings 3", Rating: 1515,
	})

	stats, err := svc.ImportLeague(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Collisions)
	assert.True(t, anyErrorIs(loggedErrors(logs), ErrIdentityCollision))
}

// A player record that cannot be tied to a club or series is skipped with a
// warning marked with the source-data sentinel.
func TestPlayerSkipWarningCarriesSentinel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	logger, logs := observedLogger()
	svc := NewUpsertService(f.leagues, f.clubs, f.series, f.teams, f.players, f.nameMapping, logger)

	snap := metroSnapshot()
	snap.Players = append(snap.Players, source.PlayerRecord{
		ExternalID: "p-9", Name: "No Club", Club: "", Series: "Series 3",
	})

	stats, err := svc.ImportLeague(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Players.Skipped)
	assert.True(t, anyErrorIs(loggedErrors(logs), ErrSourceData))
}

// An invalid match record is skipped with a warning marked with the
// source-data sentinel.
func TestInvalidMatchWarningCarriesSentinel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	l := importedLeague(t, f)
	logger, logs := observedLogger()
	svc := NewMatchService(f.matches, f.teams, logger)

	rec := matchRecord("", []string{"p-1"})
	rec.HomeTeam = ""
	stats, err := svc.ImportMatches(ctx, l, source.Snapshot{Matches: []source.MatchRecord{rec}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Counts.Skipped)
	assert.True(t, anyErrorIs(loggedErrors(logs), ErrSourceData))
}

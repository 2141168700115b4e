package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/leaguesync/internal/domain/league"
	"github.com/riskibarqy/leaguesync/internal/domain/namemapping"
	"github.com/riskibarqy/leaguesync/internal/domain/series"
	"github.com/riskibarqy/leaguesync/internal/platform/cache"
	"github.com/riskibarqy/leaguesync/internal/platform/fuzzy"
	"github.com/riskibarqy/leaguesync/internal/platform/logging"
)

const seriesFuzzyMinScore = 0.6

// NameMappingService translates a league's user-facing series naming
// convention into canonical stored names. Resolution order: exact canonical
// match, persisted per-league mapping, fuzzy unique candidate, failure with
// a diagnostic naming near misses from other leagues.
type NameMappingService struct {
	mappings namemapping.Repository
	series   series.Repository
	leagues  league.Repository
	cache    *cache.Store
	logger   *logging.Logger
}

func NewNameMappingService(
	mappings namemapping.Repository,
	seriesRepo series.Repository,
	leagues league.Repository,
	logger *logging.Logger,
) *NameMappingService {
	if logger == nil {
		logger = logging.Default()
	}

	return &NameMappingService{
		mappings: mappings,
		series:   seriesRepo,
		leagues:  leagues,
		cache:    cache.NewStore(5 * time.Minute),
		logger:   logger.WithComponent("usecase.namemapping"),
	}
}

// Resolve returns the canonical series name for a user-facing one within a
// league. Failure wraps ErrNotFound and carries near-miss candidates from
// other leagues to aid manual mapping entry.
func (s *NameMappingService) Resolve(ctx context.Context, leagueID int64, sourceName string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "NameMappingService.Resolve")
	defer span.End()

	sourceName = strings.TrimSpace(sourceName)
	if leagueID <= 0 || sourceName == "" {
		return "", errors.Wrap(ErrInvalidInput, "league id and source name are required")
	}

	canonical, err := s.canonicalNames(ctx, leagueID)
	if err != nil {
		return "", err
	}
	for _, name := range canonical {
		if name == sourceName {
			return name, nil
		}
	}

	mapped, err := s.mappedNames(ctx, leagueID)
	if err != nil {
		return "", err
	}
	if target, ok := mapped[sourceName]; ok {
		return target, nil
	}

	best, ok, ambiguous := fuzzy.BestUnique(sourceName, canonical, seriesFuzzyMinScore)
	if ok {
		s.logger.DebugContext(ctx, "series name resolved by fuzzy match",
			"league_id", leagueID, "source", sourceName, "canonical", best)
		return best, nil
	}
	if ambiguous {
		s.logger.WarnContext(ctx, "series name fuzzy match ambiguous",
			"league_id", leagueID, "source", sourceName)
	}

	nearMisses, err := s.nearMissesElsewhere(ctx, leagueID, sourceName)
	if err != nil {
		return "", err
	}

	return "", errors.Wrapf(ErrNotFound,
		"no canonical series for %q in league %d (near misses in other leagues: %s)",
		sourceName, leagueID, formatNearMisses(nearMisses))
}

// AddMapping records an administrative mapping entry and invalidates the
// league's cached table. This is the only mutation path; runs never write
// mappings.
func (s *NameMappingService) AddMapping(ctx context.Context, m namemapping.Mapping) (namemapping.Mapping, error) {
	ctx, span := startUsecaseSpan(ctx, "NameMappingService.AddMapping")
	defer span.End()

	m.SourceName = strings.TrimSpace(m.SourceName)
	m.CanonicalName = strings.TrimSpace(m.CanonicalName)
	if err := m.Validate(); err != nil {
		return namemapping.Mapping{}, errors.Wrap(ErrInvalidInput, err.Error())
	}

	saved, err := s.mappings.Add(ctx, m)
	if err != nil {
		return namemapping.Mapping{}, fmt.Errorf("add name mapping: %w", err)
	}

	s.cache.Delete(ctx, mappingCacheKey(m.LeagueID))
	s.logger.InfoContext(ctx, "name mapping added",
		"league_id", m.LeagueID, "source", m.SourceName, "canonical", m.CanonicalName)

	return saved, nil
}

func mappingCacheKey(leagueID int64) string {
	return fmt.Sprintf("mappings:%d", leagueID)
}

func (s *NameMappingService) mappedNames(ctx context.Context, leagueID int64) (map[string]string, error) {
	value, err := s.cache.GetOrLoad(ctx, mappingCacheKey(leagueID), func(ctx context.Context) (any, error) {
		rows, err := s.mappings.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("list name mappings: %w", err)
		}
		out := make(map[string]string, len(rows))
		for _, row := range rows {
			out[row.SourceName] = row.CanonicalName
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	mapped, ok := value.(map[string]string)
	if !ok {
		return nil, fmt.Errorf("unexpected mapping cache entry type %T", value)
	}

	return mapped, nil
}

// canonicalNames lists series names associated with one league.
func (s *NameMappingService) canonicalNames(ctx context.Context, leagueID int64) ([]string, error) {
	byLeague, err := s.seriesNamesByLeague(ctx)
	if err != nil {
		return nil, err
	}

	return byLeague[leagueID], nil
}

func (s *NameMappingService) seriesNamesByLeague(ctx context.Context) (map[int64][]string, error) {
	all, err := s.series.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	names := make(map[int64]string, len(all))
	for _, item := range all {
		names[item.ID] = item.Name
	}

	pairs, err := s.series.LeaguePairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list series leagues: %w", err)
	}

	out := make(map[int64][]string)
	for _, pair := range pairs {
		if name, ok := names[pair.SeriesID]; ok {
			out[pair.LeagueID] = append(out[pair.LeagueID], name)
		}
	}

	return out, nil
}

type nearMiss struct {
	LeagueCode string
	Name       string
	Score      float64
}

// nearMissesElsewhere ranks the source name against canonical series of all
// other leagues. The diagnostic exists purely to help an administrator spot
// a convention that already has a canonical form somewhere else.
func (s *NameMappingService) nearMissesElsewhere(ctx context.Context, leagueID int64, sourceName string) ([]nearMiss, error) {
	byLeague, err := s.seriesNamesByLeague(ctx)
	if err != nil {
		return nil, err
	}

	leagues, err := s.leagues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	codes := make(map[int64]string, len(leagues))
	for _, l := range leagues {
		codes[l.ID] = l.Code
	}

	var out []nearMiss
	for otherID, names := range byLeague {
		if otherID == leagueID {
			continue
		}
		for _, candidate := range fuzzy.Rank(sourceName, names) {
			if candidate.Score < 0.5 {
				break
			}
			out = append(out, nearMiss{
				LeagueCode: codes[otherID],
				Name:       candidate.Name,
				Score:      candidate.Score,
			})
		}
	}

	return out, nil
}

func formatNearMisses(misses []nearMiss) string {
	if len(misses) == 0 {
		return "none"
	}

	parts := make([]string, 0, len(misses))
	for _, m := range misses {
		parts = append(parts, fmt.Sprintf("%s/%s", m.LeagueCode, m.Name))
	}

	return strings.Join(parts, ", ")
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/leaguesync/internal/domain/series"
)

type SeriesRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[string]series.Series
	pairs  map[[2]int64]struct{}
}

func NewSeriesRepository() *SeriesRepository {
	return &SeriesRepository{
		nextID: 1,
		rows:   make(map[string]series.Series),
		pairs:  make(map[[2]int64]struct{}),
	}
}

func (r *SeriesRepository) Upsert(_ context.Context, s series.Series) (series.Series, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rows[s.Name]; ok {
		return existing, false, nil
	}

	s.ID = r.nextID
	r.nextID++
	r.rows[s.Name] = s

	return s, true, nil
}

func (r *SeriesRepository) GetByName(_ context.Context, name string) (series.Series, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.rows[name]
	return s, ok, nil
}

func (r *SeriesRepository) List(_ context.Context) ([]series.Series, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]series.Series, 0, len(r.rows))
	for _, s := range r.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *SeriesRepository) EnsureLeague(_ context.Context, seriesID, leagueID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]int64{seriesID, leagueID}
	if _, ok := r.pairs[key]; ok {
		return false, nil
	}
	r.pairs[key] = struct{}{}

	return true, nil
}

func (r *SeriesRepository) LeaguePairs(_ context.Context) ([]series.LeagueAssociation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]series.LeagueAssociation, 0, len(r.pairs))
	for key := range r.pairs {
		out = append(out, series.LeagueAssociation{SeriesID: key[0], LeagueID: key[1]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeriesID != out[j].SeriesID {
			return out[i].SeriesID < out[j].SeriesID
		}
		return out[i].LeagueID < out[j].LeagueID
	})

	return out, nil
}

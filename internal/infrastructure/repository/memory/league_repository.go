package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/leaguesync/internal/domain/league"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[string]league.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{nextID: 1, rows: make(map[string]league.League)}
}

func (r *LeagueRepository) Upsert(_ context.Context, l league.League) (league.League, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rows[l.Code]; ok {
		existing.Name = l.Name
		r.rows[l.Code] = existing
		return existing, false, nil
	}

	l.ID = r.nextID
	r.nextID++
	r.rows[l.Code] = l

	return l, true, nil
}

func (r *LeagueRepository) GetByCode(_ context.Context, code string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.rows[code]
	return l, ok, nil
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.rows))
	for _, l := range r.rows {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })

	return out, nil
}

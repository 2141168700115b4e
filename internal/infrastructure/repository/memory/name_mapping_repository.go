package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/leaguesync/internal/domain/namemapping"
)

type NameMappingRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []namemapping.Mapping
}

func NewNameMappingRepository(mappings ...namemapping.Mapping) *NameMappingRepository {
	repo := &NameMappingRepository{nextID: 1}
	for _, m := range mappings {
		m.ID = repo.nextID
		repo.nextID++
		repo.rows = append(repo.rows, m)
	}

	return repo
}

func (r *NameMappingRepository) ListByLeague(_ context.Context, leagueID int64) ([]namemapping.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]namemapping.Mapping, 0, len(r.rows))
	for _, m := range r.rows {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}

	return out, nil
}

func (r *NameMappingRepository) Add(_ context.Context, m namemapping.Mapping) (namemapping.Mapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].LeagueID == m.LeagueID && r.rows[i].SourceName == m.SourceName {
			r.rows[i].CanonicalName = m.CanonicalName
			return r.rows[i], nil
		}
	}

	m.ID = r.nextID
	r.nextID++
	r.rows = append(r.rows, m)

	return m, nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/leaguesync/internal/domain/club"
)

type ClubRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[string]club.Club
	pairs  map[[2]int64]struct{}
}

func NewClubRepository() *ClubRepository {
	return &ClubRepository{
		nextID: 1,
		rows:   make(map[string]club.Club),
		pairs:  make(map[[2]int64]struct{}),
	}
}

func (r *ClubRepository) Upsert(_ context.Context, c club.Club) (club.Club, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rows[c.Name]; ok {
		if c.Address != "" {
			existing.Address = c.Address
		}
		r.rows[c.Name] = existing
		return existing, false, nil
	}

	c.ID = r.nextID
	r.nextID++
	r.rows[c.Name] = c

	return c, true, nil
}

func (r *ClubRepository) GetByName(_ context.Context, name string) (club.Club, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.rows[name]
	return c, ok, nil
}

func (r *ClubRepository) List(_ context.Context) ([]club.Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]club.Club, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (r *ClubRepository) EnsureLeague(_ context.Context, clubID, leagueID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]int64{clubID, leagueID}
	if _, ok := r.pairs[key]; ok {
		return false, nil
	}
	r.pairs[key] = struct{}{}

	return true, nil
}

func (r *ClubRepository) LeaguePairs(_ context.Context) ([]club.LeagueAssociation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]club.LeagueAssociation, 0, len(r.pairs))
	for key := range r.pairs {
		out = append(out, club.LeagueAssociation{ClubID: key[0], LeagueID: key[1]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClubID != out[j].ClubID {
			return out[i].ClubID < out[j].ClubID
		}
		return out[i].LeagueID < out[j].LeagueID
	})

	return out, nil
}

package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/leaguesync/internal/domain/match"
)

type MatchRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{nextID: 1}
}

// Upsert mirrors the database identity resolution: source key first, then
// content key, insert otherwise.
func (r *MatchRepository) Upsert(_ context.Context, m match.Match) (match.Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.SourceKey != "" {
		for i := range r.rows {
			if r.rows[i].LeagueID == m.LeagueID && r.rows[i].SourceKey == m.SourceKey {
				m.ID = r.rows[i].ID
				r.rows[i] = m
				return m, false, nil
			}
		}
	}
	for i := range r.rows {
		if r.rows[i].LeagueID == m.LeagueID && r.rows[i].ContentKey == m.ContentKey {
			m.ID = r.rows[i].ID
			if m.SourceKey == "" {
				m.SourceKey = r.rows[i].SourceKey
			}
			r.rows[i] = m
			return m, false, nil
		}
	}

	m.ID = r.nextID
	r.nextID++
	r.rows = append(r.rows, m)

	return m, true, nil
}

func (r *MatchRepository) List(_ context.Context) ([]match.Match, error) {
	return r.listFiltered(0), nil
}

func (r *MatchRepository) ListByLeague(_ context.Context, leagueID int64) ([]match.Match, error) {
	return r.listFiltered(leagueID), nil
}

func (r *MatchRepository) listFiltered(leagueID int64) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.rows))
	for _, m := range r.rows {
		if leagueID != 0 && m.LeagueID != leagueID {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (r *MatchRepository) UpdateTeamRefs(_ context.Context, matchID, homeTeamID, awayTeamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].ID == matchID {
			r.rows[i].HomeTeamID = homeTeamID
			r.rows[i].AwayTeamID = awayTeamID
			return nil
		}
	}

	return nil
}

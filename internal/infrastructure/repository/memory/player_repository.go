package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/leaguesync/internal/domain/player"
)

type playerKey struct {
	externalID string
	leagueID   int64
}

type PlayerRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[playerKey]player.Player
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{nextID: 1, rows: make(map[playerKey]player.Player)}
}

func (r *PlayerRepository) Upsert(_ context.Context, p player.Player) (player.Player, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := playerKey{externalID: p.ExternalID, leagueID: p.LeagueID}
	if existing, ok := r.rows[key]; ok {
		existing.TeamID = p.TeamID
		existing.ClubID = p.ClubID
		existing.SeriesID = p.SeriesID
		existing.Name = p.Name
		existing.Rating = p.Rating
		r.rows[key] = existing
		return existing, false, nil
	}

	p.ID = r.nextID
	r.nextID++
	r.rows[key] = p

	return p, true, nil
}

func (r *PlayerRepository) GetByExternalID(_ context.Context, externalID string, leagueID int64) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.rows[playerKey{externalID: externalID, leagueID: leagueID}]
	return p, ok, nil
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	return r.listFiltered(0), nil
}

func (r *PlayerRepository) ListByLeague(_ context.Context, leagueID int64) ([]player.Player, error) {
	return r.listFiltered(leagueID), nil
}

func (r *PlayerRepository) listFiltered(leagueID int64) []player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.rows))
	for _, p := range r.rows {
		if leagueID != 0 && p.LeagueID != leagueID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (r *PlayerRepository) UpdateTeamRef(_ context.Context, playerID, teamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.rows {
		if p.ID == playerID {
			p.TeamID = teamID
			r.rows[key] = p
			return nil
		}
	}

	return nil
}

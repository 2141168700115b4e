package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/leaguesync/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[[3]int64]team.Team

	clubs   *ClubRepository
	series  *SeriesRepository
	leagues *LeagueRepository
}

// NewTeamRepository joins against the sibling fakes for ListDetailed the
// way the database joins clubs, series and leagues.
func NewTeamRepository(clubs *ClubRepository, series *SeriesRepository, leagues *LeagueRepository) *TeamRepository {
	return &TeamRepository{
		nextID:  1,
		rows:    make(map[[3]int64]team.Team),
		clubs:   clubs,
		series:  series,
		leagues: leagues,
	}
}

func tripleKey(t team.Team) [3]int64 {
	return [3]int64{t.ClubID, t.SeriesID, t.LeagueID}
}

func (r *TeamRepository) Upsert(_ context.Context, t team.Team) (team.Team, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tripleKey(t)
	if existing, ok := r.rows[key]; ok {
		existing.DisplayName = t.DisplayName
		if t.Alias != "" {
			existing.Alias = t.Alias
		}
		r.rows[key] = existing
		return existing, false, nil
	}

	t.ID = r.nextID
	r.nextID++
	r.rows[key] = t

	return t, true, nil
}

func (r *TeamRepository) GetByTriple(_ context.Context, clubID, seriesID, leagueID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.rows[[3]int64{clubID, seriesID, leagueID}]
	return t, ok, nil
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	return r.listFiltered(0), nil
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID int64) ([]team.Team, error) {
	return r.listFiltered(leagueID), nil
}

func (r *TeamRepository) listFiltered(leagueID int64) []team.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.rows))
	for _, t := range r.rows {
		if leagueID != 0 && t.LeagueID != leagueID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

func (r *TeamRepository) ListDetailed(ctx context.Context) ([]team.Detail, error) {
	teams, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	clubs, _ := r.clubs.List(ctx)
	clubNames := make(map[int64]string, len(clubs))
	for _, c := range clubs {
		clubNames[c.ID] = c.Name
	}

	allSeries, _ := r.series.List(ctx)
	seriesNames := make(map[int64]string, len(allSeries))
	for _, s := range allSeries {
		seriesNames[s.ID] = s.Name
	}

	leagues, _ := r.leagues.List(ctx)
	leagueCodes := make(map[int64]string, len(leagues))
	for _, l := range leagues {
		leagueCodes[l.ID] = l.Code
	}

	out := make([]team.Detail, 0, len(teams))
	for _, t := range teams {
		out = append(out, team.Detail{
			Team:       t,
			ClubName:   clubNames[t.ClubID],
			SeriesName: seriesNames[t.SeriesID],
			LeagueCode: leagueCodes[t.LeagueID],
		})
	}

	return out, nil
}

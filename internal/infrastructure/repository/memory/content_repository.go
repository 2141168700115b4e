package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/leaguesync/internal/domain/content"
)

type contentKey struct {
	kind content.Kind
	id   int64
}

type ContentRepository struct {
	mu   sync.RWMutex
	rows map[contentKey]content.Row
}

func NewContentRepository(rows ...content.Row) *ContentRepository {
	repo := &ContentRepository{rows: make(map[contentKey]content.Row)}
	for _, row := range rows {
		repo.rows[contentKey{kind: row.Kind, id: row.ID}] = row
	}

	return repo
}

// Delete drops a row outright, standing in for the destructive interference
// a structural replace can cause.
func (r *ContentRepository) Delete(kind content.Kind, contentID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rows, contentKey{kind: kind, id: contentID})
}

func (r *ContentRepository) List(_ context.Context) ([]content.Row, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]content.Row, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (r *ContentRepository) Get(_ context.Context, kind content.Kind, contentID int64) (content.Row, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[contentKey{kind: kind, id: contentID}]
	return row, ok, nil
}

func (r *ContentRepository) UpdateTeamRef(_ context.Context, kind content.Kind, contentID, teamID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := contentKey{kind: kind, id: contentID}
	if row, ok := r.rows[key]; ok {
		row.TeamID = teamID
		r.rows[key] = row
	}

	return nil
}

func (r *ContentRepository) Restore(_ context.Context, row content.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := contentKey{kind: row.Kind, id: row.ID}
	if _, ok := r.rows[key]; !ok {
		r.rows[key] = row
	}

	return nil
}

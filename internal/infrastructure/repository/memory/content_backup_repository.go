package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/leaguesync/internal/domain/content"
)

type ContentBackupRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []content.Backup
}

func NewContentBackupRepository() *ContentBackupRepository {
	return &ContentBackupRepository{nextID: 1}
}

func (r *ContentBackupRepository) SaveAll(_ context.Context, backups []content.Backup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range backups {
		b.ID = r.nextID
		r.nextID++
		r.rows = append(r.rows, b)
	}

	return nil
}

func (r *ContentBackupRepository) ListPending(_ context.Context) ([]content.Backup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]content.Backup, 0, len(r.rows))
	for _, b := range r.rows {
		if b.RestoredAt == nil && !b.Unresolved {
			out = append(out, b)
		}
	}

	return out, nil
}

func (r *ContentBackupRepository) MarkRestored(_ context.Context, backupIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, id := range backupIDs {
		for i := range r.rows {
			if r.rows[i].ID == id {
				restoredAt := now
				r.rows[i].RestoredAt = &restoredAt
			}
		}
	}

	return nil
}

func (r *ContentBackupRepository) MarkUnresolved(_ context.Context, backupIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range backupIDs {
		for i := range r.rows {
			if r.rows[i].ID == id {
				r.rows[i].Unresolved = true
			}
		}
	}

	return nil
}

func (r *ContentBackupRepository) PurgeRestored(_ context.Context, runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rows[:0]
	for _, b := range r.rows {
		if b.RunID == runID && b.RestoredAt != nil {
			continue
		}
		kept = append(kept, b)
	}
	r.rows = kept

	return nil
}

// All exposes every holding-area row for test assertions.
func (r *ContentBackupRepository) All() []content.Backup {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]content.Backup, len(r.rows))
	copy(out, r.rows)

	return out
}

package memory

import (
	"context"
	"sync"

	"github.com/bryanwahyu/neural-health/internal/domain/history"
)

// HistoryRepository keeps the capped history in process memory (single instance / tests).
type HistoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]*history.Record
	max      int
}

func NewHistoryRepository(max int) *HistoryRepository {
	if max <= 0 {
		max = history.MaxEntries
	}
	return &HistoryRepository{sessions: make(map[string][]*history.Record), max: max}
}

// Append puts r in front and drops anything past the cap.
func (r *HistoryRepository) Append(ctx context.Context, rec *history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *rec
	list := r.sessions[rec.SessionID]
	list = append([]*history.Record{&cp}, list...)
	if len(list) > r.max {
		list = list[:r.max]
	}
	r.sessions[rec.SessionID] = list
	return nil
}

func (r *HistoryRepository) List(ctx context.Context, session string, limit int) ([]*history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.sessions[session]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]*history.Record, 0, limit)
	for _, rec := range list[:limit] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *HistoryRepository) Get(ctx context.Context, session, id string) (*history.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.sessions[session] {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, history.ErrNotFound
}

func (r *HistoryRepository) Clear(ctx context.Context, session string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, session)
	return nil
}

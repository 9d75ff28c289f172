package memory

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/neural-health/internal/domain/scanerrors"
)

const maxErrorsPerSession = 100

type ScanErrorRepository struct {
	mu       sync.Mutex
	sessions map[string][]*domain.ScanError
}

func NewScanErrorRepository() *ScanErrorRepository {
	return &ScanErrorRepository{sessions: make(map[string][]*domain.ScanError)}
}

func (r *ScanErrorRepository) Save(ctx context.Context, e *domain.ScanError) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	list := append([]*domain.ScanError{&cp}, r.sessions[e.SessionID]...)
	if len(list) > maxErrorsPerSession {
		list = list[:maxErrorsPerSession]
	}
	r.sessions[e.SessionID] = list
	return nil
}

func (r *ScanErrorRepository) ListBySession(ctx context.Context, session string, limit int) ([]*domain.ScanError, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	list := r.sessions[session]
	if limit > len(list) {
		limit = len(list)
	}
	out := make([]*domain.ScanError, 0, limit)
	for _, e := range list[:limit] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

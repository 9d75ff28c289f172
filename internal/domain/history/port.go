package history

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the record is not in the session history.
var ErrNotFound = errors.New("history record not found")

// Repository port for the capped per-session history.
// Append must keep at most MaxEntries records per session, evicting the oldest.
// List returns records newest first.
type Repository interface {
	Append(ctx context.Context, r *Record) error
	List(ctx context.Context, session string, limit int) ([]*Record, error)
	Get(ctx context.Context, session, id string) (*Record, error)
	Clear(ctx context.Context, session string) error
}

package scanerrors

import (
	"context"
)

// Repository defines persistence for scan failures
type Repository interface {
	Save(ctx context.Context, e *ScanError) error
	ListBySession(ctx context.Context, session string, limit int) ([]*ScanError, error)
}

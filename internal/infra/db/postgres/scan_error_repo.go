package postgres

import (
    "context"
    "database/sql"
    "time"

    domain "github.com/bryanwahyu/neural-health/internal/domain/scanerrors"
)

type ScanErrorRepository struct { db *sql.DB }

func NewScanErrorRepository(db *sql.DB) *ScanErrorRepository { return &ScanErrorRepository{db: db} }

func (r *ScanErrorRepository) Save(ctx context.Context, e *domain.ScanError) error {
    const q = `
INSERT INTO scan_errors (id, session_id, scan_id, phase, message, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO NOTHING;`
    created := e.CreatedAt
    if created.IsZero() { created = time.Now().UTC() }
    _, err := r.db.ExecContext(ctx, q, e.ID, stringOrDash(e.SessionID), stringOrDash(e.ScanID),
        stringOrDash(string(e.Phase)), stringOrDash(e.Message), created)
    return err
}

func (r *ScanErrorRepository) ListBySession(ctx context.Context, session string, limit int) ([]*domain.ScanError, error) {
    if limit <= 0 { limit = 20 }
    const q = `
SELECT id, session_id, scan_id, phase, message, created_at
FROM scan_errors
WHERE session_id=$1
ORDER BY seq DESC
LIMIT $2;`
    rows, err := r.db.QueryContext(ctx, q, session, limit)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []*domain.ScanError
    for rows.Next() {
        var e domain.ScanError
        if err := rows.Scan(&e.ID, &e.SessionID, &e.ScanID, &e.Phase, &e.Message, &e.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, &e)
    }
    return out, rows.Err()
}

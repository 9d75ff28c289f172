package postgres

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    domain "github.com/bryanwahyu/neural-health/internal/domain/history"
)

type HistoryRepository struct {
    db  *sql.DB
    max int
}

func NewHistoryRepository(db *sql.DB, max int) *HistoryRepository {
    if max <= 0 { max = domain.MaxEntries }
    return &HistoryRepository{db: db, max: max}
}

// Append insert record then trim session to newest max rows (use CTE)
func (r *HistoryRepository) Append(ctx context.Context, rec *domain.Record) (err error) {
    const ins = `
INSERT INTO scan_history
(id, session_id, created_at, input_excerpt, pattern, confidence, risk, image_condition, image_confidence)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`

    const trim = `
WITH keep_rows AS (
  SELECT seq FROM scan_history
  WHERE session_id=$1
  ORDER BY seq DESC
  LIMIT $2
)
DELETE FROM scan_history
WHERE session_id=$1 AND seq NOT IN (SELECT seq FROM keep_rows);`

    created := rec.CreatedAt
    if created.IsZero() { created = time.Now().UTC() }

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil { return err }
    defer func() {
        if err != nil { _ = tx.Rollback() }
    }()

    if _, err = tx.ExecContext(ctx, ins,
        rec.ID, rec.SessionID, created, rec.Input,
        stringOrDash(rec.Pattern), stringOrDash(rec.Confidence), stringOrDash(string(rec.Risk)),
        rec.ImageCondition, rec.ImageConfidence,
    ); err != nil {
        return fmt.Errorf("insert history: %w", err)
    }
    if _, err = tx.ExecContext(ctx, trim, rec.SessionID, r.max); err != nil {
        return fmt.Errorf("trim history: %w", err)
    }
    return tx.Commit()
}

func (r *HistoryRepository) List(ctx context.Context, session string, limit int) ([]*domain.Record, error) {
    if limit <= 0 || limit > r.max { limit = r.max }
    const q = `
SELECT id, session_id, created_at, input_excerpt, pattern, confidence, risk, image_condition, image_confidence
FROM scan_history
WHERE session_id=$1
ORDER BY seq DESC
LIMIT $2;`
    rows, err := r.db.QueryContext(ctx, q, session, limit)
    if err != nil { return nil, fmt.Errorf("querying history: %w", err) }
    defer rows.Close()

    var out []*domain.Record
    for rows.Next() {
        var rec domain.Record
        if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.CreatedAt, &rec.Input, &rec.Pattern,
            &rec.Confidence, &rec.Risk, &rec.ImageCondition, &rec.ImageConfidence); err != nil {
            return nil, fmt.Errorf("scanning row: %w", err)
        }
        out = append(out, &rec)
    }
    return out, rows.Err()
}

// Get by ID + Session
func (r *HistoryRepository) Get(ctx context.Context, session, id string) (*domain.Record, error) {
    const q = `
SELECT id, session_id, created_at, input_excerpt, pattern, confidence, risk, image_condition, image_confidence
FROM scan_history
WHERE session_id=$1 AND id=$2
LIMIT 1;`
    var rec domain.Record
    err := r.db.QueryRowContext(ctx, q, session, id).Scan(&rec.ID, &rec.SessionID, &rec.CreatedAt, &rec.Input,
        &rec.Pattern, &rec.Confidence, &rec.Risk, &rec.ImageCondition, &rec.ImageConfidence)
    if errors.Is(err, sql.ErrNoRows) { return nil, domain.ErrNotFound }
    if err != nil { return nil, err }
    return &rec, nil
}

func (r *HistoryRepository) Clear(ctx context.Context, session string) error {
    _, err := r.db.ExecContext(ctx, `DELETE FROM scan_history WHERE session_id=$1`, session)
    return err
}

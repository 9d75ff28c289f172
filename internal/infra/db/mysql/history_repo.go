package mysql

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
	if max <= 0 {
		max = domain.MaxEntries
	}
	return &HistoryRepository{db: db, max: max}
}

// Append inserts a record and evicts everything older than the newest max rows of the session.
func (r *HistoryRepository) Append(ctx context.Context, rec *domain.Record) (err error) {
	const ins = `
INSERT INTO scan_history
  (id, session_id, created_at, input_excerpt, pattern, confidence, risk, image_condition, image_confidence)
VALUES (?,?,?,?,?,?,?,?,?)
`
	// derived table is required: MySQL rejects LIMIT directly inside IN (...)
	const evict = `
DELETE FROM scan_history
WHERE session_id = ? AND seq NOT IN (
  SELECT seq FROM (
    SELECT seq FROM scan_history WHERE session_id = ? ORDER BY seq DESC LIMIT ?
  ) keep_rows
)
`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, ins,
		rec.ID, rec.SessionID, created, rec.Input,
		stringOrDash(rec.Pattern), stringOrDash(rec.Confidence), stringOrDash(string(rec.Risk)),
		rec.ImageCondition, rec.ImageConfidence,
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	if _, err = tx.ExecContext(ctx, evict, rec.SessionID, rec.SessionID, r.max); err != nil {
		return fmt.Errorf("evict history: %w", err)
	}
	return tx.Commit()
}

// List returns records newest first
func (r *HistoryRepository) List(ctx context.Context, session string, limit int) ([]*domain.Record, error) {
	if limit <= 0 || limit > r.max {
		limit = r.max
	}
	const q = `
SELECT id, session_id, created_at, input_excerpt, pattern, confidence, risk, image_condition, image_confidence
FROM scan_history
WHERE session_id=?
ORDER BY seq DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, session, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.CreatedAt, &rec.Input, &rec.Pattern,
			&rec.Confidence, &rec.Risk, &rec.ImageCondition, &rec.ImageConfidence); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *HistoryRepository) Get(ctx context.Context, session, id string) (*domain.Record, error) {
	const q = `
SELECT id, session_id, created_at, input_excerpt, pattern, confidence, risk, image_condition, image_confidence
FROM scan_history
WHERE session_id=? AND id=? LIMIT 1;
`
	var rec domain.Record
	err := r.db.QueryRowContext(ctx, q, session, id).Scan(&rec.ID, &rec.SessionID, &rec.CreatedAt, &rec.Input,
		&rec.Pattern, &rec.Confidence, &rec.Risk, &rec.ImageCondition, &rec.ImageConfidence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *HistoryRepository) Clear(ctx context.Context, session string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scan_history WHERE session_id=?`, session)
	return err
}

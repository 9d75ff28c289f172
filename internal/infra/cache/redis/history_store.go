package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/bryanwahyu/neural-health/internal/domain/history"
)

// HistoryStore keeps each session's history as a capped list, newest at index 0.
type HistoryStore struct {
	client *redis.Client
	max    int
	ttl    time.Duration
}

// NewHistoryStore returns a store holding at most max entries per session.
// A ttl of 0 keeps sessions forever.
func NewHistoryStore(client *redis.Client, max int, ttl time.Duration) *HistoryStore {
	if max <= 0 {
		max = domain.MaxEntries
	}
	return &HistoryStore{client: client, max: max, ttl: ttl}
}

func historyKey(session string) string { return "history:" + session }

func (s *HistoryStore) Append(ctx context.Context, rec *domain.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	key := historyKey(rec.SessionID)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, data)
		p.LTrim(ctx, key, 0, int64(s.max-1))
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, session string, limit int) ([]*domain.Record, error) {
	if limit <= 0 || limit > s.max {
		limit = s.max
	}
	raw, err := s.client.LRange(ctx, historyKey(session), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	out := make([]*domain.Record, 0, len(raw))
	for _, item := range raw {
		var rec domain.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (s *HistoryStore) Get(ctx context.Context, session, id string) (*domain.Record, error) {
	list, err := s.List(ctx, session, s.max)
	if err != nil {
		return nil, err
	}
	for _, rec := range list {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *HistoryStore) Clear(ctx context.Context, session string) error {
	return s.client.Del(ctx, historyKey(session)).Err()
}

// Ping reports whether the server is reachable.
func (s *HistoryStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	domain "github.com/bryanwahyu/neural-health/internal/domain/scanerrors"
)

const maxScanErrors = 100

type ScanErrorStore struct {
	client *redis.Client
}

func NewScanErrorStore(client *redis.Client) *ScanErrorStore {
	return &ScanErrorStore{client: client}
}

func (s *ScanErrorStore) Save(ctx context.Context, e *domain.ScanError) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal scan error: %w", err)
	}
	key := "scan_errors:" + e.SessionID
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, data)
		p.LTrim(ctx, key, 0, maxScanErrors-1)
		return nil
	})
	return err
}

func (s *ScanErrorStore) ListBySession(ctx context.Context, session string, limit int) ([]*domain.ScanError, error) {
	if limit <= 0 {
		limit = 20
	}
	raw, err := s.client.LRange(ctx, "scan_errors:"+session, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ScanError, 0, len(raw))
	for _, item := range raw {
		var e domain.ScanError
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal scan error: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}

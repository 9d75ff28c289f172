package ai

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/neural-health/internal/domain/ai"
	"github.com/bryanwahyu/neural-health/internal/domain/history"
)

type Service struct {
	client  ai.Client
	records history.Repository
}

func NewService(client ai.Client, records history.Repository) *Service {
	return &Service{client: client, records: records}
}

// Explanation is the language model's plain-language reading of a stored scan.
type Explanation struct {
	RecordID string `json:"record_id"`
	Pattern  string `json:"pattern"`
	Result   string `json:"result"` // JSON string from AI
}

// Explain loads a history record and asks the model to explain it.
func (s *Service) Explain(ctx context.Context, session, recordID string) (*Explanation, error) {
	rec, err := s.records.Get(ctx, session, recordID)
	if err != nil {
		return nil, err
	}
	image := ""
	if rec.ImageCondition != "" {
		image = fmt.Sprintf("%s (%s)", rec.ImageCondition, rec.ImageConfidence)
	}
	out, err := s.client.Explain(ctx, ai.ExplainInput{
		Symptoms:   rec.Input,
		Pattern:    rec.Pattern,
		Confidence: rec.Confidence,
		Risk:       string(rec.Risk),
		Image:      image,
	})
	if err != nil {
		return nil, err
	}
	return &Explanation{RecordID: rec.ID, Pattern: rec.Pattern, Result: out}, nil
}

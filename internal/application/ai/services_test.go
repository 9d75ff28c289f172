package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	domai "github.com/bryanwahyu/neural-health/internal/domain/ai"
	"github.com/bryanwahyu/neural-health/internal/domain/history"
	"github.com/bryanwahyu/neural-health/internal/domain/scans"
	"github.com/bryanwahyu/neural-health/internal/infra/db/memory"
)

type fakeClient struct {
	got domai.ExplainInput
	out string
	err error
}

func (f *fakeClient) Explain(ctx context.Context, in domai.ExplainInput) (string, error) {
	f.got = in
	return f.out, f.err
}

func seed(t *testing.T, repo history.Repository) *history.Record {
	t.Helper()
	rec := &history.Record{
		ID:              "11111111-2222-3333-4444-555555555555",
		SessionID:       "s",
		CreatedAt:       time.Now().UTC(),
		Input:           "sore throat and fever since yesterday",
		Pattern:         "Upper Respiratory Pattern",
		Confidence:      "91.20%",
		Risk:            scans.RiskHigh,
		ImageCondition:  "Pharyngitis",
		ImageConfidence: "77%",
	}
	if err := repo.Append(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestExplain(t *testing.T) {
	repo := memory.NewHistoryRepository(10)
	rec := seed(t, repo)
	client := &fakeClient{out: `{"summary":"ok"}`}
	svc := NewService(client, repo)

	out, err := svc.Explain(context.Background(), "s", rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Result != `{"summary":"ok"}` || out.RecordID != rec.ID || out.Pattern != rec.Pattern {
		t.Fatalf("unexpected explanation %+v", out)
	}
	if client.got.Risk != "High" || client.got.Image != "Pharyngitis (77%)" || client.got.Symptoms != rec.Input {
		t.Fatalf("unexpected model input %+v", client.got)
	}
}

func TestExplainUnknownRecord(t *testing.T) {
	svc := NewService(&fakeClient{}, memory.NewHistoryRepository(10))
	if _, err := svc.Explain(context.Background(), "s", "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExplainPropagatesQuota(t *testing.T) {
	repo := memory.NewHistoryRepository(10)
	rec := seed(t, repo)
	svc := NewService(&fakeClient{err: domai.ErrQuotaExceeded}, repo)
	if _, err := svc.Explain(context.Background(), "s", rec.ID); !errors.Is(err, domai.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

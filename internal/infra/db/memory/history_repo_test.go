package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bryanwahyu/neural-health/internal/domain/history"
	"github.com/bryanwahyu/neural-health/internal/domain/scanerrors"
)

func TestHistoryRepositoryCap(t *testing.T) {
	repo := NewHistoryRepository(3)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := repo.Append(ctx, &history.Record{ID: fmt.Sprint(i), SessionID: "s"}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := repo.List(ctx, "s", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "4" || list[2].ID != "2" {
		t.Fatalf("unexpected list %v", ids(list))
	}
	if _, err := repo.Get(ctx, "s", "0"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected evicted record, got %v", err)
	}

	limited, _ := repo.List(ctx, "s", 2)
	if len(limited) != 2 {
		t.Fatalf("limit not applied: %d", len(limited))
	}
}

func TestHistoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewHistoryRepository(0)
	ctx := context.Background()
	rec := &history.Record{ID: "a", SessionID: "s", Pattern: "Flu"}
	_ = repo.Append(ctx, rec)
	rec.Pattern = "mutated"

	got, _ := repo.Get(ctx, "s", "a")
	if got.Pattern != "Flu" {
		t.Fatalf("stored record aliased caller value: %q", got.Pattern)
	}
	got.Pattern = "again"
	again, _ := repo.Get(ctx, "s", "a")
	if again.Pattern != "Flu" {
		t.Fatal("returned record aliases stored value")
	}
}

func TestHistoryRepositoryClear(t *testing.T) {
	repo := NewHistoryRepository(10)
	ctx := context.Background()
	_ = repo.Append(ctx, &history.Record{ID: "a", SessionID: "s"})
	_ = repo.Append(ctx, &history.Record{ID: "b", SessionID: "other"})
	_ = repo.Clear(ctx, "s")
	if list, _ := repo.List(ctx, "s", 10); len(list) != 0 {
		t.Fatal("expected cleared session")
	}
	if list, _ := repo.List(ctx, "other", 10); len(list) != 1 {
		t.Fatal("other session must survive")
	}
}

func TestScanErrorRepositoryNewestFirst(t *testing.T) {
	repo := NewScanErrorRepository()
	ctx := context.Background()
	_ = repo.Save(ctx, &scanerrors.ScanError{ID: "1", SessionID: "s", Phase: scanerrors.PhaseText})
	_ = repo.Save(ctx, &scanerrors.ScanError{ID: "2", SessionID: "s", Phase: scanerrors.PhaseImage})
	list, err := repo.ListBySession(ctx, "s", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "2" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func ids(list []*history.Record) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	domain "github.com/bryanwahyu/neural-health/internal/domain/history"
	"github.com/bryanwahyu/neural-health/internal/domain/scanerrors"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestHistoryStoreKeepsNewestTen(t *testing.T) {
	_, client := newTestClient(t)
	store := NewHistoryStore(client, domain.MaxEntries, 0)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		rec := &domain.Record{ID: fmt.Sprintf("scan-%d", i), SessionID: "sess", Input: "x"}
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	list, err := store.List(ctx, "sess", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != domain.MaxEntries {
		t.Fatalf("expected %d records, got %d", domain.MaxEntries, len(list))
	}
	for i, rec := range list {
		if want := fmt.Sprintf("scan-%d", 10-i); rec.ID != want {
			t.Fatalf("position %d: got %s want %s", i, rec.ID, want)
		}
	}
	if _, err := store.Get(ctx, "sess", "scan-0"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected oldest record evicted, got %v", err)
	}
	if rec, err := store.Get(ctx, "sess", "scan-5"); err != nil || rec.ID != "scan-5" {
		t.Fatalf("get scan-5: %v %v", rec, err)
	}

	limited, _ := store.List(ctx, "sess", 3)
	if len(limited) != 3 || limited[0].ID != "scan-10" {
		t.Fatalf("limit not applied: %d", len(limited))
	}
}

func TestHistoryStoreSessionsAreIsolated(t *testing.T) {
	_, client := newTestClient(t)
	store := NewHistoryStore(client, 0, 0)
	ctx := context.Background()

	_ = store.Append(ctx, &domain.Record{ID: "a1", SessionID: "a"})
	_ = store.Append(ctx, &domain.Record{ID: "b1", SessionID: "b"})

	if err := store.Clear(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	a, _ := store.List(ctx, "a", 0)
	b, _ := store.List(ctx, "b", 0)
	if len(a) != 0 || len(b) != 1 {
		t.Fatalf("clear leaked across sessions: a=%d b=%d", len(a), len(b))
	}
}

func TestHistoryStoreTTL(t *testing.T) {
	mr, client := newTestClient(t)
	store := NewHistoryStore(client, 0, 30*time.Minute)
	ctx := context.Background()

	if err := store.Append(ctx, &domain.Record{ID: "x", SessionID: "sess"}); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL(historyKey("sess")); ttl != 30*time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}
	mr.FastForward(31 * time.Minute)
	list, _ := store.List(ctx, "sess", 0)
	if len(list) != 0 {
		t.Fatalf("expected history to expire, got %d", len(list))
	}
}

func TestScanErrorStoreNewestFirst(t *testing.T) {
	_, client := newTestClient(t)
	store := NewScanErrorStore(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		e := &scanerrors.ScanError{ID: fmt.Sprint(i), SessionID: "sess", Phase: scanerrors.PhaseText, Message: "down"}
		if err := store.Save(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	list, err := store.ListBySession(ctx, "sess", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "2" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestConnectAcceptsURLAndAddress(t *testing.T) {
	mr, _ := newTestClient(t)
	ctx := context.Background()

	for _, addr := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		client, err := Connect(ctx, addr, "", 0)
		if err != nil {
			t.Fatalf("connect %s: %v", addr, err)
		}
		client.Close()
	}

	mr.Close()
	if _, err := Connect(ctx, mr.Addr(), "", 0); err == nil {
		t.Fatal("expected error once the server is gone")
	}
}

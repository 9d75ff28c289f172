package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestTokenBucketRefill(t *testing.T) {
	now := time.Unix(0, 0)
	tb := newTokenBucket(2, 1, func() time.Time { return now })

	if !tb.Allow() || !tb.Allow() {
		t.Fatal("expected burst of 2")
	}
	if tb.Allow() {
		t.Fatal("expected bucket to be empty")
	}
	now = now.Add(1500 * time.Millisecond)
	if !tb.Allow() {
		t.Fatal("expected one token after refill")
	}
	if tb.Allow() {
		t.Fatal("expected fractional token to be insufficient")
	}
}

func TestRateLimitPerSession(t *testing.T) {
	limiter := NewRateLimiter(1, 0)
	r := chi.NewRouter()
	r.Route("/s/{session}", func(r chi.Router) {
		r.Use(RateLimit(limiter))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	})

	do := func(session string) int {
		req := httptest.NewRequest(http.MethodGet, "/s/"+session+"/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("a"); code != http.StatusOK {
		t.Fatalf("first request: %d", code)
	}
	if code := do("a"); code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d", code)
	}
	if code := do("b"); code != http.StatusOK {
		t.Fatalf("other session: %d", code)
	}
}

func TestSweepRemovesIdleBuckets(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(1, 60)
	rl.now = func() time.Time { return now }
	rl.Allow("k")
	now = now.Add(11 * time.Minute)
	rl.sweep(10 * time.Minute)
	if len(rl.buckets) != 0 {
		t.Fatalf("expected idle bucket removed, have %d", len(rl.buckets))
	}
}

func TestRateLimitIgnoresForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(1, 0)
	r := chi.NewRouter()
	r.Route("/s/{session}", func(r chi.Router) {
		r.Use(RateLimit(limiter))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	})

	codes := make([]int, 0, 3)
	for _, fwd := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3, 10.0.0.9"} {
		req := httptest.NewRequest(http.MethodGet, "/s/a/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("rotating X-Forwarded-For bypassed the limit: %v", codes)
	}
}

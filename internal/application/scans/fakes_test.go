package scans

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	domain "github.com/bryanwahyu/neural-health/internal/domain/scans"
)

type fakeText struct {
	preds []domain.TextPrediction
	err   error
	// hook runs before the fake returns; a non-nil error replaces the result
	hook  func(ctx context.Context) error
	calls atomic.Int32

	mu   sync.Mutex
	last domain.TextQuery
}

func (f *fakeText) AnalyzeText(ctx context.Context, q domain.TextQuery) ([]domain.TextPrediction, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = q
	f.mu.Unlock()
	if f.hook != nil {
		if err := f.hook(ctx); err != nil {
			return nil, err
		}
	}
	return f.preds, f.err
}

type fakeImage struct {
	preds []domain.VisionPrediction
	err   error
	hook  func(ctx context.Context) error
	calls atomic.Int32
}

func (f *fakeImage) AnalyzeImage(ctx context.Context, img domain.ImageAttachment) ([]domain.VisionPrediction, error) {
	f.calls.Add(1)
	if f.hook != nil {
		if err := f.hook(ctx); err != nil {
			return nil, err
		}
	}
	return f.preds, f.err
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fakeArchive struct {
	keys []string
	err  error
}

func (a *fakeArchive) Put(ctx context.Context, key string, img domain.ImageAttachment) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "http://minio.local/images/" + key, nil
}

type countingRecorder struct {
	mu       sync.Mutex
	results  map[string]int
	degraded int
}

func (r *countingRecorder) ObserveScan(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.results == nil {
		r.results = map[string]int{}
	}
	r.results[result]++
}

func (r *countingRecorder) ObserveImageDegraded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded++
}

func textOK(disease, confidence string) *fakeText {
	return &fakeText{preds: []domain.TextPrediction{{Disease: disease, Confidence: confidence}}}
}

func pngAttachment() *domain.ImageAttachment {
	return &domain.ImageAttachment{Filename: "rash.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
}

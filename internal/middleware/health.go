package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const readinessTimeout = 5 * time.Second

// HealthChecker is a dependency the readiness endpoint pings: the history
// store, the image archive.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// SQLChecker pings the mysql/postgres history database.
type SQLChecker struct {
	DB *sql.DB
}

func (c *SQLChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.DB.PingContext(ctx)
}

type readiness struct {
	Status    string                `json:"status"`
	Timestamp time.Time             `json:"timestamp"`
	Checks    map[string]checkState `json:"checks"`
}

type checkState struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Message   string `json:"message,omitempty"`
}

// HealthHandler pings every dependency in parallel; 503 kalau ada yang gagal.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		report := readiness{
			Status:    "ready",
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]checkState, len(checkers)),
		}

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for name, checker := range checkers {
			wg.Add(1)
			go func(name string, checker HealthChecker) {
				defer wg.Done()
				start := time.Now()
				err := checker.Check(ctx)
				st := checkState{Status: "up", LatencyMS: time.Since(start).Milliseconds()}
				if err != nil {
					st.Status = "down"
					st.Message = err.Error()
				}
				mu.Lock()
				report.Checks[name] = st
				if err != nil {
					report.Status = "not_ready"
				}
				mu.Unlock()
			}(name, checker)
		}
		wg.Wait()

		code := http.StatusOK
		if report.Status != "ready" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(report)
	}
}

// LivenessHandler answers as long as the process serves HTTP.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

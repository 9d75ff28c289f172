package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HISTORY_DRIVER", "")
	t.Setenv("PREDICTOR_BASE_URL", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.History.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.History.Driver)
	}
	if cfg.PredictorTimeout() != 0 {
		t.Fatalf("expected no client timeout by default, got %s", cfg.PredictorTimeout())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
server:
  port: 9090
predictor:
  baseURL: http://predictor:8000
  timeoutSeconds: 30
history:
  driver: redis
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PREDICTOR_BASE_URL", "http://override:9000")
	t.Setenv("HISTORY_DRIVER", "")
	t.Setenv("API_KEYS", "a, b,,c")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected file port, got %d", cfg.Server.Port)
	}
	if cfg.Predictor.BaseURL != "http://override:9000" {
		t.Fatalf("expected env override, got %q", cfg.Predictor.BaseURL)
	}
	if cfg.Predictor.TextPath != "/predict" {
		t.Fatalf("expected default text path to survive, got %q", cfg.Predictor.TextPath)
	}
	if cfg.History.Driver != DriverRedis {
		t.Fatalf("expected redis driver, got %q", cfg.History.Driver)
	}
	if cfg.PredictorTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.PredictorTimeout())
	}
	if len(cfg.Auth.APIKeys) != 3 {
		t.Fatalf("expected 3 api keys, got %v", cfg.Auth.APIKeys)
	}
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Default()
	cfg.History.Driver = "cassandra"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	cfg.History.Driver = DriverPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for postgres without dsn")
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.User = "u"
	cfg.Database.Password = "p"
	cfg.Database.Host = "db"
	cfg.Database.Name = "health"
	want := "u:p@tcp(db:3306)/health?parseTime=true&charset=utf8mb4&loc=UTC"
	if got := cfg.MySQLDSN(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestLoadRejectsHistoryCapAboveTen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("history:\n  maxEntries: 50\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HISTORY_DRIVER", "")
	t.Setenv("PREDICTOR_BASE_URL", "")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for maxEntries above the history cap")
	}

	cfg := Default()
	cfg.History.MaxEntries = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for maxEntries 0")
	}
	cfg.History.MaxEntries = 5
	if err := cfg.Validate(); err != nil {
		t.Fatalf("maxEntries 5 should be accepted: %v", err)
	}
}

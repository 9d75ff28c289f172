package mysql

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS scan_history (
  seq BIGINT AUTO_INCREMENT PRIMARY KEY,
  id VARCHAR(64) NOT NULL UNIQUE,
  session_id VARCHAR(64) NOT NULL,
  created_at DATETIME(6) NOT NULL,
  input_excerpt VARCHAR(512) NOT NULL,
  pattern VARCHAR(255) NOT NULL,
  confidence VARCHAR(64) NOT NULL,
  risk VARCHAR(16) NOT NULL,
  image_condition VARCHAR(255) NOT NULL DEFAULT '',
  image_confidence VARCHAR(64) NOT NULL DEFAULT '',
  INDEX idx_scan_history_session (session_id, seq)
)`,
	`CREATE TABLE IF NOT EXISTS scan_errors (
  seq BIGINT AUTO_INCREMENT PRIMARY KEY,
  id VARCHAR(64) NOT NULL UNIQUE,
  session_id VARCHAR(64) NOT NULL,
  scan_id VARCHAR(64) NOT NULL,
  phase VARCHAR(16) NOT NULL,
  message TEXT NOT NULL,
  created_at DATETIME(6) NOT NULL,
  INDEX idx_scan_errors_session (session_id, seq)
)`,
}

// Migrate creates the tables used by the repositories when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

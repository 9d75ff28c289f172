package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	domain "github.com/bryanwahyu/neural-health/internal/domain/history"
	"github.com/bryanwahyu/neural-health/internal/domain/scans"
)

func TestAppendTrimsSessionInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewHistoryRepository(db, 0)

	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scan_history")).
		WithArgs("scan-1", "sess", created, "rash", "Eczema", "0.71", string(scans.RiskLow), "Eczema", "88%").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WITH keep_rows AS")).
		WithArgs("sess", domain.MaxEntries).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = repo.Append(context.Background(), &domain.Record{
		ID:              "scan-1",
		SessionID:       "sess",
		CreatedAt:       created,
		Input:           "rash",
		Pattern:         "Eczema",
		Confidence:      "0.71",
		Risk:            scans.RiskLow,
		ImageCondition:  "Eczema",
		ImageConfidence: "88%",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAppendRollsBackWhenInsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewHistoryRepository(db, 3)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scan_history")).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	if err := repo.Append(context.Background(), &domain.Record{ID: "dup", SessionID: "sess"}); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListUsesConfiguredCap(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewHistoryRepository(db, 3)

	cols := []string{"id", "session_id", "created_at", "input_excerpt", "pattern", "confidence", "risk", "image_condition", "image_confidence"}
	mock.ExpectQuery(regexp.QuoteMeta("FROM scan_history")).
		WithArgs("sess", 3).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c", "sess", time.Now().UTC(), "in", "-", "-", "-", "", ""))

	list, err := repo.List(context.Background(), "sess", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "c" {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

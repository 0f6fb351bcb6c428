package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"tradejournal/src/model"
)

func TestSummaryRepositoryEnsureExists_IsIdempotent(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	// Two racing calls for the same brand-new date. The second insert hits
	// the unique index and the conflict clause swallows it; neither call
	// errors and neither touches notes.
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "day_summaries" .* ON CONFLICT \("user_id","trade_date"\) DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()
	}

	if err := repo.EnsureExists(context.Background(), 1, "2026-03-05"); err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	if err := repo.EnsureExists(context.Background(), 1, "2026-03-05"); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSummaryRepositoryEnsureExists_RejectsBadDate(t *testing.T) {
	mockDB, _ := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	err := repo.EnsureExists(context.Background(), 1, "05-03-2026")

	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSummaryRepositoryUpsertNotes_OverwritesOnConflict(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "day_summaries" .* ON CONFLICT \("user_id","trade_date"\) DO UPDATE SET "notes"=`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	if err := repo.UpsertNotes(context.Background(), 1, "2026-03-05", "choppy open"); err != nil {
		t.Fatalf("unexpected error upserting notes: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSummaryRepositoryUpsertNotes_RejectsOverlongNotes(t *testing.T) {
	mockDB, _ := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	long := make([]byte, model.SummaryNotesMaxLen+1)
	for i := range long {
		long[i] = 'x'
	}

	err := repo.UpsertNotes(context.Background(), 1, "2026-03-05", string(long))

	var validationErr *model.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSummaryRepositoryGetDay_DerivesPLFromEntries(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	rows := sqlmock.NewRows([]string{"trade_date", "pl", "notes"}).
		AddRow("2026-03-05", "60", "two trades")

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf(dayJoinQuery, "="))).
		WithArgs(uint(1), "2026-03-05").
		WillReturnRows(rows)

	day, err := repo.GetDay(context.Background(), 1, "2026-03-05")
	if err != nil {
		t.Fatalf("unexpected error fetching day: %v", err)
	}
	if day == nil {
		t.Fatal("expected a day row")
	}

	if day.PL.String() != "60" {
		t.Fatalf("expected derived pl 60, got %s", day.PL)
	}
	if day.Notes != "two trades" {
		t.Fatalf("unexpected notes: %q", day.Notes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSummaryRepositoryGetDay_MissingDayIsNil(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf(dayJoinQuery, "="))).
		WithArgs(uint(1), "2026-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"trade_date", "pl", "notes"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS cnt, COALESCE\(SUM\(pnl\), 0\) AS pl`).
		WithArgs(uint(1), "2026-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"cnt", "pl"}).AddRow(0, "0"))

	day, err := repo.GetDay(context.Background(), 1, "2026-03-05")
	if err != nil {
		t.Fatalf("unexpected error fetching day: %v", err)
	}
	if day != nil {
		t.Fatalf("expected nil for a never-traded day, got %+v", day)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSummaryRepositoryGetDay_OrphanedEntriesStillReport(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf(dayJoinQuery, "="))).
		WithArgs(uint(1), "2026-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"trade_date", "pl", "notes"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS cnt, COALESCE\(SUM\(pnl\), 0\) AS pl`).
		WithArgs(uint(1), "2026-03-05").
		WillReturnRows(sqlmock.NewRows([]string{"cnt", "pl"}).AddRow(2, "-15"))

	day, err := repo.GetDay(context.Background(), 1, "2026-03-05")
	if err != nil {
		t.Fatalf("unexpected error fetching day: %v", err)
	}
	if day == nil {
		t.Fatal("expected a synthesized day row")
	}

	if day.PL.String() != "-15" {
		t.Fatalf("expected pl -15, got %s", day.PL)
	}
	if day.Notes != "" {
		t.Fatalf("expected empty notes, got %q", day.Notes)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSummaryRepositoryMonthDays(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	rows := sqlmock.NewRows([]string{"trade_date", "pl", "notes"}).
		AddRow("2026-03-02", "100", "").
		AddRow("2026-03-03", "0", "sat out")

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf(dayJoinQuery, "LIKE"))).
		WithArgs(uint(1), "2026-03%").
		WillReturnRows(rows)

	days, err := repo.MonthDays(context.Background(), 1, 2026, 3)
	if err != nil {
		t.Fatalf("unexpected error fetching month: %v", err)
	}

	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if !days[1].PL.IsZero() {
		t.Fatalf("noted day without entries must read as zero pl, got %s", days[1].PL)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSummaryRepositoryMonthlyTotals(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	rows := sqlmock.NewRows([]string{"month", "pl"}).
		AddRow("01", "250").
		AddRow("03", "-80")

	mock.ExpectQuery(`SELECT substr\(trade_date, 6, 2\) AS month`).
		WithArgs(uint(1), "2026-%").
		WillReturnRows(rows)

	totals, err := repo.MonthlyTotals(context.Background(), 1, 2026)
	if err != nil {
		t.Fatalf("unexpected error fetching totals: %v", err)
	}

	if len(totals) != 2 {
		t.Fatalf("expected totals for 2 months, got %d", len(totals))
	}
	if totals[time.January].String() != "250" {
		t.Fatalf("unexpected january total: %s", totals[time.January])
	}
	if totals[time.March].String() != "-80" {
		t.Fatalf("unexpected march total: %s", totals[time.March])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSummaryRepositoryDailyTotals(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &SummaryRepository{db: mockDB}

	rows := sqlmock.NewRows([]string{"trade_date", "pl", "notes"}).
		AddRow("2026-01-05", "100", "").
		AddRow("2026-01-06", "-30", "")

	mock.ExpectQuery(regexp.QuoteMeta(fmt.Sprintf(dayJoinQuery, "LIKE"))).
		WithArgs(uint(1), "%").
		WillReturnRows(rows)

	days, err := repo.DailyTotals(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error fetching history: %v", err)
	}

	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].TradeDate != "2026-01-05" {
		t.Fatalf("history not in date order: %+v", days)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

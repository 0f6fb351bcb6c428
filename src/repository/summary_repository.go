package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// DayRow is a day summary with its P/L derived from the entry table at read
// time. There is no stored pl column anywhere to drift out of sync.
type DayRow struct {
	TradeDate string          `gorm:"column:trade_date" json:"date"`
	PL        decimal.Decimal `gorm:"column:pl" json:"pl"`
	Notes     string          `gorm:"column:notes" json:"notes"`
}

const dayJoinQuery = `
SELECT t.trade_date AS trade_date,
       COALESCE(SUM(te.pnl), 0) AS pl,
       t.notes AS notes
FROM day_summaries t
LEFT JOIN trade_entries te
       ON te.user_id = t.user_id AND te.trade_date = t.trade_date
WHERE t.user_id = ? AND t.trade_date %s ?
GROUP BY t.trade_date, t.notes
ORDER BY t.trade_date ASC`

// SummaryRepository maintains the one-notes-row-per-day anchor table and
// serves the derived day/month/year rollups.
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new repository instance using the main
// read/write database.
func NewSummaryRepository() *SummaryRepository {
	logger.WithField("component", "SummaryRepository").
		Info("Creating new SummaryRepository with MainDB")

	return &SummaryRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *SummaryRepository) WithDB(db *gorm.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// UpsertNotes creates the summary row for (owner, date) or overwrites its
// notes if it already exists. It never touches P/L because none is stored.
func (r *SummaryRepository) UpsertNotes(
	ctx context.Context,
	ownerID uint,
	date string,
	notes string,
) error {

	if err := model.ValidateTradeDate(date); err != nil {
		return err
	}
	payload := model.UpsertNotesPayload{Notes: notes}
	if err := payload.Validate(); err != nil {
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "SummaryRepository",
		"op":         "UpsertNotes",
		"user_id":    ownerID,
		"trade_date": date,
	}).Debug("Upserting day notes")

	summary := &model.DaySummary{
		UserID:    ownerID,
		TradeDate: date,
		Notes:     notes,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "trade_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"notes"}),
	}).Create(summary).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "SummaryRepository",
			"op":         "UpsertNotes",
			"user_id":    ownerID,
			"trade_date": date,
		}).WithError(err).Error("Failed to upsert day notes")

		return &model.StoreError{Op: "upsert notes", Err: err}
	}

	return nil
}

// EnsureExists creates an empty-notes summary for (owner, date) if none
// exists and does nothing otherwise. Existing notes are never clobbered, and
// two racing calls for the same new date both succeed: the conflict resolves
// inside the insert, not as an error.
func (r *SummaryRepository) EnsureExists(
	ctx context.Context,
	ownerID uint,
	date string,
) error {

	if err := model.ValidateTradeDate(date); err != nil {
		return err
	}

	summary := &model.DaySummary{
		UserID:    ownerID,
		TradeDate: date,
		Notes:     "",
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "trade_date"}},
		DoNothing: true,
	}).Create(summary).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "SummaryRepository",
			"op":         "EnsureExists",
			"user_id":    ownerID,
			"trade_date": date,
		}).WithError(err).Error("Failed to ensure day summary")

		return &model.StoreError{Op: "ensure summary", Err: err}
	}

	return nil
}

// GetDay returns the summary row for a date with its derived P/L.
// Returns (nil, nil) when neither a summary row nor entries exist for the
// date. A date with entries but no summary row still reports the entries'
// P/L; Create's transaction should make that case impossible, but readers
// must not rely on it.
func (r *SummaryRepository) GetDay(
	ctx context.Context,
	ownerID uint,
	date string,
) (*DayRow, error) {

	if err := model.ValidateTradeDate(date); err != nil {
		return nil, err
	}

	var rows []DayRow
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf(dayJoinQuery, "="), ownerID, date).
		Scan(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "SummaryRepository",
			"op":         "GetDay",
			"user_id":    ownerID,
			"trade_date": date,
		}).WithError(err).Error("Failed to fetch day summary")

		return nil, &model.StoreError{Op: "get day", Err: err}
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}

	// Orphaned entries without an anchor row: still report their P/L.
	var orphan struct {
		Cnt int64           `gorm:"column:cnt"`
		PL  decimal.Decimal `gorm:"column:pl"`
	}
	err = r.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) AS cnt, COALESCE(SUM(pnl), 0) AS pl
FROM trade_entries WHERE user_id = ? AND trade_date = ?`, ownerID, date).
		Scan(&orphan).Error
	if err != nil {
		return nil, &model.StoreError{Op: "get day", Err: err}
	}
	if orphan.Cnt == 0 {
		return nil, nil
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "SummaryRepository",
		"op":         "GetDay",
		"user_id":    ownerID,
		"trade_date": date,
	}).Warn("Entries exist without a day summary row")

	return &DayRow{TradeDate: date, PL: orphan.PL, Notes: ""}, nil
}

// MonthDays returns every summarized day in a calendar month with derived
// P/L, ordered by date ascending.
func (r *SummaryRepository) MonthDays(
	ctx context.Context,
	ownerID uint,
	year int,
	month int,
) ([]DayRow, error) {

	if month < 1 || month > 12 {
		return nil, model.NewValidationError("month", "must be between 1 and 12")
	}

	pattern := fmt.Sprintf("%04d-%02d%%", year, month)

	var rows []DayRow
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf(dayJoinQuery, "LIKE"), ownerID, pattern).
		Scan(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "SummaryRepository",
			"op":      "MonthDays",
			"user_id": ownerID,
			"year":    year,
			"month":   month,
		}).WithError(err).Error("Failed to fetch month days")

		return nil, &model.StoreError{Op: "month days", Err: err}
	}

	return rows, nil
}

// MonthlyTotals rolls the owner's entries for one year up into a month→P/L
// map. Months without entries are absent; callers treat them as zero.
func (r *SummaryRepository) MonthlyTotals(
	ctx context.Context,
	ownerID uint,
	year int,
) (map[time.Month]decimal.Decimal, error) {

	pattern := fmt.Sprintf("%04d-%%", year)

	var rows []struct {
		Month string          `gorm:"column:month"`
		PL    decimal.Decimal `gorm:"column:pl"`
	}
	err := r.db.WithContext(ctx).
		Raw(`SELECT substr(trade_date, 6, 2) AS month, COALESCE(SUM(pnl), 0) AS pl
FROM trade_entries
WHERE user_id = ? AND trade_date LIKE ?
GROUP BY substr(trade_date, 6, 2)
ORDER BY month`, ownerID, pattern).
		Scan(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "SummaryRepository",
			"op":      "MonthlyTotals",
			"user_id": ownerID,
			"year":    year,
		}).WithError(err).Error("Failed to fetch monthly totals")

		return nil, &model.StoreError{Op: "monthly totals", Err: err}
	}

	totals := make(map[time.Month]decimal.Decimal, len(rows))
	for _, row := range rows {
		m, err := strconv.Atoi(row.Month)
		if err != nil || m < 1 || m > 12 {
			continue
		}
		totals[time.Month(m)] = row.PL
	}

	return totals, nil
}

// DailyTotals returns the owner's complete per-day P/L history in date
// order. Noted days without entries appear with zero P/L, which is what
// lets the streak scan distinguish a flat day from a missing one.
func (r *SummaryRepository) DailyTotals(
	ctx context.Context,
	ownerID uint,
) ([]DayRow, error) {

	var rows []DayRow
	err := r.db.WithContext(ctx).
		Raw(fmt.Sprintf(dayJoinQuery, "LIKE"), ownerID, "%").
		Scan(&rows).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "SummaryRepository",
			"op":      "DailyTotals",
			"user_id": ownerID,
		}).WithError(err).Error("Failed to fetch daily totals")

		return nil, &model.StoreError{Op: "daily totals", Err: err}
	}

	return rows, nil
}

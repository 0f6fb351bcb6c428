package repository

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradejournal/src/database"
	"tradejournal/src/model"
)

// EntryRepository handles read/write operations for trade entries. Creating
// an entry also guarantees the day-summary anchor row for its date exists.
type EntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new repository instance using the main
// read/write database.
func NewEntryRepository() *EntryRepository {
	logger.WithField("component", "EntryRepository").
		Info("Creating new EntryRepository with MainDB")

	return &EntryRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *EntryRepository) WithDB(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create validates and inserts a new entry for the given owner, and ensures
// a DaySummary row exists for the entry's date. Both writes happen in one
// transaction: an entry must never exist without its day anchor. The summary
// insert is an insert-or-ignore, so concurrent creates for a brand-new date
// cannot surface a duplicate-key error and existing notes are never touched.
func (r *EntryRepository) Create(
	ctx context.Context,
	ownerID uint,
	payload model.CreateEntryPayload,
) (*model.TradeEntry, error) {

	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "EntryRepository",
		"op":         "Create",
		"user_id":    ownerID,
		"trade_date": payload.TradeDate,
		"ticker":     payload.Ticker,
	}).Debug("Creating new trade entry")

	entry := &model.TradeEntry{
		UserID:     ownerID,
		TradeDate:  payload.TradeDate,
		Ticker:     payload.Ticker,
		Direction:  payload.Direction,
		EntryPrice: payload.EntryPrice,
		ExitPrice:  payload.ExitPrice,
		Size:       payload.Size,
		PNL:        *payload.PNL,
		Notes:      payload.Notes,
	}
	if payload.Tag != "" {
		entry.Tag = &payload.Tag
	}
	entry.Confidence = payload.Confidence
	entry.SetupQuality = payload.SetupQuality

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		summary := &model.DaySummary{
			UserID:    ownerID,
			TradeDate: payload.TradeDate,
			Notes:     "",
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "trade_date"}},
			DoNothing: true,
		}).Create(summary).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "EntryRepository",
			"op":      "Create",
			"user_id": ownerID,
		}).WithError(err).Error("Failed to create trade entry")

		return nil, &model.StoreError{Op: "create entry", Err: err}
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "EntryRepository",
		"op":       "Create",
		"entry_id": entry.ID,
	}).Info("Trade entry created")

	return entry, nil
}

// Update mutates the editable subset of an entry (ticker, direction, pnl,
// tag, confidence, setup quality). The trade date and price/size fields are
// immutable once recorded.
func (r *EntryRepository) Update(
	ctx context.Context,
	ownerID uint,
	id uint,
	payload model.UpdateEntryPayload,
) (*model.TradeEntry, error) {

	payload.Normalize()
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "EntryRepository",
		"op":       "Update",
		"user_id":  ownerID,
		"entry_id": id,
	}).Debug("Updating trade entry")

	var entry model.TradeEntry
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &model.NotFoundError{Resource: "entry", ID: id}
		}
		return nil, &model.StoreError{Op: "load entry", Err: err}
	}

	var tag *string
	if payload.Tag != "" {
		tag = &payload.Tag
	}

	updates := map[string]interface{}{
		"ticker":        payload.Ticker,
		"direction":     payload.Direction,
		"pnl":           *payload.PNL,
		"tag":           tag,
		"confidence":    payload.Confidence,
		"setup_quality": payload.SetupQuality,
	}

	err = r.db.WithContext(ctx).
		Model(&model.TradeEntry{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(updates).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "EntryRepository",
			"op":       "Update",
			"entry_id": id,
		}).WithError(err).Error("Failed to update trade entry")

		return nil, &model.StoreError{Op: "update entry", Err: err}
	}

	entry.Ticker = payload.Ticker
	entry.Direction = payload.Direction
	entry.PNL = *payload.PNL
	entry.Tag = tag
	entry.Confidence = payload.Confidence
	entry.SetupQuality = payload.SetupQuality

	return &entry, nil
}

// Delete removes an entry belonging to the owner. Deleting an id that does
// not exist (or belongs to someone else) affects zero rows and is not an
// error, mirroring DELETE ... WHERE id = ? AND user_id = ? semantics.
func (r *EntryRepository) Delete(
	ctx context.Context,
	ownerID uint,
	id uint,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":     "EntryRepository",
		"op":       "Delete",
		"user_id":  ownerID,
		"entry_id": id,
	}).Debug("Deleting trade entry")

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.TradeEntry{}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "EntryRepository",
			"op":       "Delete",
			"entry_id": id,
		}).WithError(err).Error("Failed to delete trade entry")

		return &model.StoreError{Op: "delete entry", Err: err}
	}

	return nil
}

// ListByDate returns the owner's entries for one date, most recent first.
func (r *EntryRepository) ListByDate(
	ctx context.Context,
	ownerID uint,
	date string,
) ([]model.TradeEntry, error) {

	if err := model.ValidateTradeDate(date); err != nil {
		return nil, err
	}

	var entries []model.TradeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND trade_date = ?", ownerID, date).
		Order("created_at DESC, id DESC").
		Find(&entries).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "EntryRepository",
			"op":         "ListByDate",
			"user_id":    ownerID,
			"trade_date": date,
		}).WithError(err).Error("Failed to list entries by date")

		return nil, &model.StoreError{Op: "list entries", Err: err}
	}

	return entries, nil
}

// ListByMonth returns all of the owner's entries in a calendar month,
// ordered by date then creation time, both descending. Callers group by
// date for display.
func (r *EntryRepository) ListByMonth(
	ctx context.Context,
	ownerID uint,
	year int,
	month int,
) ([]model.TradeEntry, error) {

	if month < 1 || month > 12 {
		return nil, model.NewValidationError("month", "must be between 1 and 12")
	}

	pattern := fmt.Sprintf("%04d-%02d%%", year, month)

	var entries []model.TradeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND trade_date LIKE ?", ownerID, pattern).
		Order("trade_date DESC, created_at DESC").
		Find(&entries).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "EntryRepository",
			"op":      "ListByMonth",
			"user_id": ownerID,
			"year":    year,
			"month":   month,
		}).WithError(err).Error("Failed to list entries by month")

		return nil, &model.StoreError{Op: "list entries", Err: err}
	}

	return entries, nil
}

// ListAll returns the owner's complete entry history in chronological
// order. The overview rollups consume this.
func (r *EntryRepository) ListAll(
	ctx context.Context,
	ownerID uint,
) ([]model.TradeEntry, error) {

	var entries []model.TradeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("trade_date ASC, created_at ASC").
		Find(&entries).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "EntryRepository",
			"op":      "ListAll",
			"user_id": ownerID,
		}).WithError(err).Error("Failed to list all entries")

		return nil, &model.StoreError{Op: "list entries", Err: err}
	}

	return entries, nil
}

// GroupByDate buckets entries under their trade date, preserving the slice
// order within each bucket.
func GroupByDate(entries []model.TradeEntry) map[string][]model.TradeEntry {
	grouped := make(map[string][]model.TradeEntry)
	for i := range entries {
		grouped[entries[i].TradeDate] = append(grouped[entries[i].TradeDate], entries[i])
	}
	return grouped
}

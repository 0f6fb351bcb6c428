package model

import "time"

const SummaryNotesMaxLen = 4000

// DaySummary is the notes-bearing anchor row for a (user, trade date) pair.
// At most one exists per pair. It carries no P/L column: the displayed day
// P/L is always SUM(trade_entries.pnl) computed at read time, so this table
// can never drift from its entries.
//
// Once created a summary persists forever, even if every entry for the date
// is deleted and the notes are cleared. Readers treat such a row as a
// zero-P/L day, not as a missing day.
type DaySummary struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_summaries_user_date,priority:1;not null" json:"user_id"`
	TradeDate string    `gorm:"size:10;uniqueIndex:idx_summaries_user_date,priority:2;not null" json:"trade_date"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (DaySummary) TableName() string {
	return "day_summaries"
}

// UpsertNotesPayload is the request body for saving day notes.
type UpsertNotesPayload struct {
	Notes string `json:"notes"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

const (
	TickerMaxLen     = 15
	EntryNotesMaxLen = 2000
	TagMaxLen        = 50
)

// TradeEntry is one discrete trade execution record. A user can have any
// number of entries per trade date; the day's P/L is always derived by
// summing them, never stored.
type TradeEntry struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"index:idx_entries_user_date,priority:1;not null" json:"user_id"`

	// Calendar date in YYYY-MM-DD form. Kept as a string column so month
	// queries can use a plain prefix match, same as the summary table.
	TradeDate string `gorm:"size:10;index:idx_entries_user_date,priority:2;not null" json:"trade_date"`

	Ticker    string `gorm:"size:15;not null" json:"ticker"`
	Direction string `gorm:"size:10;not null;default:LONG" json:"direction"`

	EntryPrice decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"entry_price"`
	ExitPrice  decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"exit_price"`
	Size       int             `gorm:"default:0" json:"size"`

	// PNL is whatever the caller submitted. It is never recomputed from
	// entry/exit price and size on the server side.
	PNL decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"pnl"`

	Notes        string  `gorm:"type:text" json:"notes"`
	Tag          *string `gorm:"size:50" json:"tag,omitempty"`
	Confidence   *int    `json:"confidence,omitempty"`
	SetupQuality *string `gorm:"size:1" json:"setup_quality,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (TradeEntry) TableName() string {
	return "trade_entries"
}

// CreateEntryPayload is the request body for adding an entry.
type CreateEntryPayload struct {
	TradeDate    string           `json:"trade_date"`
	Ticker       string           `json:"ticker"`
	Direction    string           `json:"direction"`
	EntryPrice   decimal.Decimal  `json:"entry_price"`
	ExitPrice    decimal.Decimal  `json:"exit_price"`
	Size         int              `json:"size"`
	PNL          *decimal.Decimal `json:"pnl"`
	Notes        string           `json:"notes"`
	Tag          string           `json:"tag"`
	Confidence   *int             `json:"confidence"`
	SetupQuality *string          `json:"setup_quality"`
}

// UpdateEntryPayload carries the mutable subset of an entry. Trade date and
// the price/size fields are fixed once recorded.
type UpdateEntryPayload struct {
	Ticker       string           `json:"ticker"`
	Direction    string           `json:"direction"`
	PNL          *decimal.Decimal `json:"pnl"`
	Tag          string           `json:"tag"`
	Confidence   *int             `json:"confidence"`
	SetupQuality *string          `json:"setup_quality"`
}

package model

import (
	"strings"
	"time"
)

// ValidateTradeDate accepts strictly formatted YYYY-MM-DD calendar dates.
func ValidateTradeDate(date string) error {
	if len(date) != 10 {
		return NewValidationError("trade_date", "must be YYYY-MM-DD")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return NewValidationError("trade_date", "must be YYYY-MM-DD")
	}
	return nil
}

func validateTicker(ticker string) error {
	if ticker == "" {
		return NewValidationError("ticker", "is required")
	}
	if len(ticker) > TickerMaxLen {
		return NewValidationError("ticker", "too long (max 15 chars)")
	}
	return nil
}

func validateDirection(direction string) error {
	if direction != DirectionLong && direction != DirectionShort {
		return NewValidationError("direction", "must be LONG or SHORT")
	}
	return nil
}

func validateTag(tag string) error {
	if len(tag) > TagMaxLen {
		return NewValidationError("tag", "too long (max 50 chars)")
	}
	return nil
}

func validateConfidence(confidence *int) error {
	if confidence != nil && (*confidence < 1 || *confidence > 5) {
		return NewValidationError("confidence", "must be between 1 and 5")
	}
	return nil
}

func validateSetupQuality(quality *string) error {
	if quality == nil {
		return nil
	}
	switch *quality {
	case "A", "B", "C":
		return nil
	}
	return NewValidationError("setup_quality", "must be A, B, or C")
}

// Normalize trims the string fields, uppercases the ticker, and defaults the
// direction before validation.
func (p *CreateEntryPayload) Normalize() {
	p.Ticker = strings.ToUpper(strings.TrimSpace(p.Ticker))
	p.Notes = strings.TrimSpace(p.Notes)
	p.Tag = strings.TrimSpace(p.Tag)
	if p.Direction == "" {
		p.Direction = DirectionLong
	}
}

func (p *CreateEntryPayload) Validate() error {
	if err := ValidateTradeDate(p.TradeDate); err != nil {
		return err
	}
	if err := validateTicker(p.Ticker); err != nil {
		return err
	}
	if err := validateDirection(p.Direction); err != nil {
		return err
	}
	if p.PNL == nil {
		return NewValidationError("pnl", "is required")
	}
	if p.EntryPrice.Sign() < 0 {
		return NewValidationError("entry_price", "must not be negative")
	}
	if p.ExitPrice.Sign() < 0 {
		return NewValidationError("exit_price", "must not be negative")
	}
	if p.Size < 0 {
		return NewValidationError("size", "must not be negative")
	}
	if len(p.Notes) > EntryNotesMaxLen {
		return NewValidationError("notes", "too long (max 2000 chars)")
	}
	if err := validateTag(p.Tag); err != nil {
		return err
	}
	if err := validateConfidence(p.Confidence); err != nil {
		return err
	}
	return validateSetupQuality(p.SetupQuality)
}

func (p *UpdateEntryPayload) Normalize() {
	p.Ticker = strings.ToUpper(strings.TrimSpace(p.Ticker))
	p.Tag = strings.TrimSpace(p.Tag)
	if p.Direction == "" {
		p.Direction = DirectionLong
	}
}

func (p *UpdateEntryPayload) Validate() error {
	if err := validateTicker(p.Ticker); err != nil {
		return err
	}
	if err := validateDirection(p.Direction); err != nil {
		return err
	}
	if p.PNL == nil {
		return NewValidationError("pnl", "is required")
	}
	if err := validateTag(p.Tag); err != nil {
		return err
	}
	if err := validateConfidence(p.Confidence); err != nil {
		return err
	}
	return validateSetupQuality(p.SetupQuality)
}

func (p *UpsertNotesPayload) Validate() error {
	if len(p.Notes) > SummaryNotesMaxLen {
		return NewValidationError("notes", "too long (max 4000 chars)")
	}
	return nil
}

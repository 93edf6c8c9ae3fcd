package model

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxTickerLength = 10

func validateTicker(ticker string) error {
	t := strings.TrimSpace(ticker)
	if t == "" || len(t) > maxTickerLength {
		return errors.New("ticker must be 1-10 characters")
	}
	return nil
}

// PositionCreate is the payload for opening a new position.
// Multiplier defaults to 100 and open fees to 0 when omitted.
type PositionCreate struct {
	AccountID       uuid.UUID        `json:"account_id"`
	Ticker          string           `json:"ticker"`
	Type            string           `json:"type"`
	OpenDate        Date             `json:"open_date"`
	ExpirationDate  Date             `json:"expiration_date"`
	StrikePrice     decimal.Decimal  `json:"strike_price"`
	Contracts       int              `json:"contracts"`
	PremiumPerShare decimal.Decimal  `json:"premium_per_share"`
	Multiplier      *int             `json:"multiplier"`
	OpenFees        *decimal.Decimal `json:"open_fees"`
	Notes           *string          `json:"notes"`
	Tags            []string         `json:"tags"`
}

func (c *PositionCreate) Validate() error {
	if c.AccountID == uuid.Nil {
		return errors.New("account_id is required")
	}
	if err := validateTicker(c.Ticker); err != nil {
		return err
	}
	if !IsValidPositionType(c.Type) {
		return errors.New("type must be COVERED_CALL or CASH_SECURED_PUT")
	}
	if c.OpenDate.IsZero() || c.ExpirationDate.IsZero() {
		return errors.New("open_date and expiration_date are required")
	}
	if !c.StrikePrice.IsPositive() {
		return errors.New("strike_price must be positive")
	}
	if c.Contracts <= 0 {
		return errors.New("contracts must be positive")
	}
	if c.Multiplier != nil && *c.Multiplier <= 0 {
		return errors.New("multiplier must be positive")
	}
	if c.PremiumPerShare.IsNegative() {
		return errors.New("premium_per_share must not be negative")
	}
	if c.OpenFees != nil && c.OpenFees.IsNegative() {
		return errors.New("open_fees must not be negative")
	}
	return nil
}

// NewPosition builds an OPEN position owned by userID from the payload.
// Status is forced to OPEN regardless of input and the ticker is
// normalized to uppercase.
func (c *PositionCreate) NewPosition(userID uuid.UUID) *Position {
	multiplier := 100
	if c.Multiplier != nil {
		multiplier = *c.Multiplier
	}
	openFees := decimal.Zero
	if c.OpenFees != nil {
		openFees = *c.OpenFees
	}
	return &Position{
		UserID:          userID,
		AccountID:       c.AccountID,
		Ticker:          strings.ToUpper(strings.TrimSpace(c.Ticker)),
		Type:            c.Type,
		Status:          PositionStatusOpen,
		OpenDate:        c.OpenDate,
		ExpirationDate:  c.ExpirationDate,
		StrikePrice:     c.StrikePrice,
		Contracts:       c.Contracts,
		Multiplier:      multiplier,
		PremiumPerShare: c.PremiumPerShare,
		OpenFees:        openFees,
		CloseFees:       decimal.Zero,
		Notes:           c.Notes,
		Tags:            c.Tags,
	}
}

// PositionUpdate is a partial update. Absent keys never clobber stored
// values; the nullable fields ride through Optional so an explicit null
// clears the column. Status and the roll bookkeeping fields are
// deliberately unreachable from here.
type PositionUpdate struct {
	AccountID          *uuid.UUID                `json:"account_id"`
	Ticker             *string                   `json:"ticker"`
	Type               *string                   `json:"type"`
	OpenDate           *Date                     `json:"open_date"`
	ExpirationDate     *Date                     `json:"expiration_date"`
	StrikePrice        *decimal.Decimal          `json:"strike_price"`
	Contracts          *int                      `json:"contracts"`
	PremiumPerShare    *decimal.Decimal          `json:"premium_per_share"`
	Multiplier         *int                      `json:"multiplier"`
	OpenFees           *decimal.Decimal          `json:"open_fees"`
	CloseFees          *decimal.Decimal          `json:"close_fees"`
	ClosePricePerShare Optional[decimal.Decimal] `json:"close_price_per_share"`
	Notes              Optional[string]          `json:"notes"`
	Tags               Optional[[]string]        `json:"tags"`
}

func (u *PositionUpdate) Validate() error {
	if u.Ticker != nil {
		if err := validateTicker(*u.Ticker); err != nil {
			return err
		}
	}
	if u.Type != nil && !IsValidPositionType(*u.Type) {
		return errors.New("type must be COVERED_CALL or CASH_SECURED_PUT")
	}
	if u.StrikePrice != nil && !u.StrikePrice.IsPositive() {
		return errors.New("strike_price must be positive")
	}
	if u.Contracts != nil && *u.Contracts <= 0 {
		return errors.New("contracts must be positive")
	}
	if u.Multiplier != nil && *u.Multiplier <= 0 {
		return errors.New("multiplier must be positive")
	}
	if u.PremiumPerShare != nil && u.PremiumPerShare.IsNegative() {
		return errors.New("premium_per_share must not be negative")
	}
	if u.OpenFees != nil && u.OpenFees.IsNegative() {
		return errors.New("open_fees must not be negative")
	}
	if u.CloseFees != nil && u.CloseFees.IsNegative() {
		return errors.New("close_fees must not be negative")
	}
	return nil
}

// Apply copies the provided fields onto the position.
func (u *PositionUpdate) Apply(p *Position) {
	if u.AccountID != nil {
		p.AccountID = *u.AccountID
	}
	if u.Ticker != nil {
		p.Ticker = strings.ToUpper(strings.TrimSpace(*u.Ticker))
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.OpenDate != nil {
		p.OpenDate = *u.OpenDate
	}
	if u.ExpirationDate != nil {
		p.ExpirationDate = *u.ExpirationDate
	}
	if u.StrikePrice != nil {
		p.StrikePrice = *u.StrikePrice
	}
	if u.Contracts != nil {
		p.Contracts = *u.Contracts
	}
	if u.PremiumPerShare != nil {
		p.PremiumPerShare = *u.PremiumPerShare
	}
	if u.Multiplier != nil {
		p.Multiplier = *u.Multiplier
	}
	if u.OpenFees != nil {
		p.OpenFees = *u.OpenFees
	}
	if u.CloseFees != nil {
		p.CloseFees = *u.CloseFees
	}
	if u.ClosePricePerShare.Set {
		p.ClosePricePerShare = u.ClosePricePerShare.Value
	}
	if u.Notes.Set {
		p.Notes = u.Notes.Value
	}
	if u.Tags.Set {
		p.Tags = nil
		if u.Tags.Value != nil {
			p.Tags = *u.Tags.Value
		}
	}
}

// PositionClose is the payload for closing a position directly.
type PositionClose struct {
	Outcome            string           `json:"outcome"`
	CloseDate          Date             `json:"close_date"`
	ClosePricePerShare *decimal.Decimal `json:"close_price_per_share"`
	CloseFees          *decimal.Decimal `json:"close_fees"`
}

func (c *PositionClose) Validate() error {
	if !IsValidCloseOutcome(c.Outcome) {
		return errors.New("outcome must be EXPIRED, ASSIGNED or CLOSED_EARLY")
	}
	if c.CloseDate.IsZero() {
		return errors.New("close_date is required")
	}
	if c.CloseFees != nil && c.CloseFees.IsNegative() {
		return errors.New("close_fees must not be negative")
	}
	return nil
}

// RollClose carries the closing terms of a roll. The outcome is not part of
// the payload. rolling always records ROLLED.
type RollClose struct {
	CloseDate          Date             `json:"close_date"`
	ClosePricePerShare *decimal.Decimal `json:"close_price_per_share"`
	CloseFees          *decimal.Decimal `json:"close_fees"`
}

func (c *RollClose) Validate() error {
	if c.CloseDate.IsZero() {
		return errors.New("close.close_date is required")
	}
	if c.CloseFees != nil && c.CloseFees.IsNegative() {
		return errors.New("close.close_fees must not be negative")
	}
	return nil
}

// PositionRoll closes an existing position and opens a replacement in one
// atomic operation.
type PositionRoll struct {
	Close RollClose      `json:"close"`
	Open  PositionCreate `json:"open"`
}

func (r *PositionRoll) Validate() error {
	if err := r.Close.Validate(); err != nil {
		return err
	}
	return r.Open.Validate()
}

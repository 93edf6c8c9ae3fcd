// Package metrics derives the financial figures of a single position from
// its stored fields and an evaluation date. Every function here is pure and
// total. edge cases like zero collateral or a same-day open/expire produce a
// definite zero, never an error. All money math uses exact decimals.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"wheelhouse/src/model"
)

var daysPerYear = decimal.NewFromInt(365)

// Snapshot holds the derived metrics of a position at a point in time.
type Snapshot struct {
	PremiumTotal  decimal.Decimal
	PremiumNet    decimal.Decimal
	Collateral    decimal.Decimal
	RocPeriod     decimal.Decimal
	DTE           int
	DaysInTrade   int
	AnnualizedRoc decimal.Decimal
}

// Compute evaluates the position as of the given date.
func Compute(p *model.Position, today time.Time) Snapshot {
	size := decimal.NewFromInt(int64(p.Contracts)).Mul(decimal.NewFromInt(int64(p.Multiplier)))

	premiumTotal := p.PremiumPerShare.Mul(size)
	premiumNet := premiumTotal.Sub(p.OpenFees).Sub(p.CloseFees)
	collateral := p.StrikePrice.Mul(size)

	rocPeriod := decimal.Zero
	if !collateral.IsZero() {
		rocPeriod = premiumNet.Div(collateral)
	}

	// DTE may be negative for an expired-but-still-open position. that is
	// informational, not an error.
	dte := model.DateOf(today).DaysUntil(p.ExpirationDate)

	daysInTrade := p.OpenDate.DaysUntil(p.ExpirationDate)
	if p.CloseDate != nil {
		daysInTrade = p.OpenDate.DaysUntil(*p.CloseDate)
	}

	annualized := decimal.Zero
	if !collateral.IsZero() && daysInTrade > 0 {
		annualized = rocPeriod.Mul(daysPerYear).Div(decimal.NewFromInt(int64(daysInTrade)))
	}

	return Snapshot{
		PremiumTotal:  premiumTotal,
		PremiumNet:    premiumNet,
		Collateral:    collateral,
		RocPeriod:     rocPeriod,
		DTE:           dte,
		DaysInTrade:   daysInTrade,
		AnnualizedRoc: annualized,
	}
}

// ContributedPremium is the folding rule shared by every aggregate. closed
// positions contribute their net premium, open ones their gross premium.
// The premium figures do not depend on a date, so no clock is involved.
func ContributedPremium(p *model.Position) decimal.Decimal {
	size := decimal.NewFromInt(int64(p.Contracts)).Mul(decimal.NewFromInt(int64(p.Multiplier)))
	total := p.PremiumPerShare.Mul(size)
	if p.IsClosed() {
		return total.Sub(p.OpenFees).Sub(p.CloseFees)
	}
	return total
}

// NewPositionResponse copies the stored fields and attaches the derived
// metrics evaluated as of today.
func NewPositionResponse(p *model.Position, today time.Time) model.PositionResponse {
	s := Compute(p, today)
	return model.PositionResponse{
		ID:                 p.ID,
		UserID:             p.UserID,
		AccountID:          p.AccountID,
		Ticker:             p.Ticker,
		Type:               p.Type,
		Status:             p.Status,
		OpenDate:           p.OpenDate,
		ExpirationDate:     p.ExpirationDate,
		CloseDate:          p.CloseDate,
		StrikePrice:        p.StrikePrice,
		Contracts:          p.Contracts,
		Multiplier:         p.Multiplier,
		PremiumPerShare:    p.PremiumPerShare,
		OpenFees:           p.OpenFees,
		CloseFees:          p.CloseFees,
		ClosePricePerShare: p.ClosePricePerShare,
		Outcome:            p.Outcome,
		RollGroupID:        p.RollGroupID,
		Notes:              p.Notes,
		Tags:               p.Tags,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		PremiumTotal:       s.PremiumTotal,
		PremiumNet:         s.PremiumNet,
		Collateral:         s.Collateral,
		RocPeriod:          s.RocPeriod,
		DTE:                s.DTE,
		AnnualizedRoc:      s.AnnualizedRoc,
	}
}

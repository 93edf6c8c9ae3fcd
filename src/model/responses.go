package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionResponse is a position enriched with its derived financial
// metrics. Field order mirrors the CSV export surface.
type PositionResponse struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	AccountID          uuid.UUID        `json:"account_id"`
	Ticker             string           `json:"ticker"`
	Type               string           `json:"type"`
	Status             string           `json:"status"`
	OpenDate           Date             `json:"open_date"`
	ExpirationDate     Date             `json:"expiration_date"`
	CloseDate          *Date            `json:"close_date"`
	StrikePrice        decimal.Decimal  `json:"strike_price"`
	Contracts          int              `json:"contracts"`
	Multiplier         int              `json:"multiplier"`
	PremiumPerShare    decimal.Decimal  `json:"premium_per_share"`
	OpenFees           decimal.Decimal  `json:"open_fees"`
	CloseFees          decimal.Decimal  `json:"close_fees"`
	ClosePricePerShare *decimal.Decimal `json:"close_price_per_share"`
	Outcome            *string          `json:"outcome"`
	RollGroupID        *uuid.UUID       `json:"roll_group_id"`
	Notes              *string          `json:"notes"`
	Tags               StringList       `json:"tags"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`

	PremiumTotal  decimal.Decimal `json:"premium_total"`
	PremiumNet    decimal.Decimal `json:"premium_net"`
	Collateral    decimal.Decimal `json:"collateral"`
	RocPeriod     decimal.Decimal `json:"roc_period"`
	DTE           int             `json:"dte"`
	AnnualizedRoc decimal.Decimal `json:"annualized_roc"`
}

// RollResponse returns both legs of a completed roll.
type RollResponse struct {
	Closed PositionResponse `json:"closed"`
	Opened PositionResponse `json:"opened"`
}

// DashboardSummary aggregates a user's positions for the dashboard.
type DashboardSummary struct {
	TotalPremiumCollected decimal.Decimal    `json:"total_premium_collected"`
	PremiumMTD            decimal.Decimal    `json:"premium_mtd"`
	OpenPositionCount     int                `json:"open_position_count"`
	UpcomingExpirations   []PositionResponse `json:"upcoming_expirations"`
}

// TickerSummary is a per-ticker rollup of premium and returns.
type TickerSummary struct {
	Ticker           string          `json:"ticker"`
	TotalPremium     decimal.Decimal `json:"total_premium"`
	TradeCount       int             `json:"trade_count"`
	AvgAnnualizedRoc decimal.Decimal `json:"avg_annualized_roc"`
}

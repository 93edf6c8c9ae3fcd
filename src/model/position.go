package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StringList stores a list of tags as a JSON text column so the same model
// works against postgres and the sqlite test database.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// Position is a single covered-call or cash-secured-put trade record.
// A position is OPEN until it is closed or rolled. rolling closes this
// record and opens a fresh one linked through RollGroupID.
type Position struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	AccountID          uuid.UUID        `gorm:"type:uuid;index;not null" json:"account_id"`
	Ticker             string           `gorm:"size:10;not null" json:"ticker"`
	Type               string           `gorm:"size:30;not null" json:"type"`
	Status             string           `gorm:"size:10;not null;default:OPEN" json:"status"`
	OpenDate           Date             `gorm:"type:date;not null" json:"open_date"`
	ExpirationDate     Date             `gorm:"type:date;not null" json:"expiration_date"`
	CloseDate          *Date            `gorm:"type:date" json:"close_date"`
	StrikePrice        decimal.Decimal  `gorm:"type:numeric;not null" json:"strike_price"`
	Contracts          int              `gorm:"not null" json:"contracts"`
	Multiplier         int              `gorm:"not null;default:100" json:"multiplier"`
	PremiumPerShare    decimal.Decimal  `gorm:"type:numeric;not null" json:"premium_per_share"`
	OpenFees           decimal.Decimal  `gorm:"type:numeric;not null;default:0" json:"open_fees"`
	CloseFees          decimal.Decimal  `gorm:"type:numeric;not null;default:0" json:"close_fees"`
	ClosePricePerShare *decimal.Decimal `gorm:"type:numeric" json:"close_price_per_share"`
	Outcome            *string          `gorm:"size:20" json:"outcome"`
	RollGroupID        *uuid.UUID       `gorm:"type:uuid;index" json:"roll_group_id"`
	Notes              *string          `json:"notes"`
	Tags               StringList       `gorm:"type:text" json:"tags"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (Position) TableName() string { return "positions" }

func (p *Position) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsClosed reports whether the position has reached its terminal status.
func (p *Position) IsClosed() bool { return p.Status == PositionStatusClosed }

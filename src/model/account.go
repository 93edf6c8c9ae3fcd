package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a brokerage account owned by exactly one user.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name         string    `gorm:"not null" json:"name"`
	Broker       string    `gorm:"size:30;not null" json:"broker"`
	TaxTreatment *string   `json:"tax_treatment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AccountCreate is the payload for creating an account.
type AccountCreate struct {
	Name         string  `json:"name"`
	Broker       string  `json:"broker"`
	TaxTreatment *string `json:"tax_treatment"`
}

func (c *AccountCreate) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name must not be empty")
	}
	if !IsValidBroker(c.Broker) {
		return errors.New("broker must be one of robinhood, merrill, other")
	}
	return nil
}

// AccountUpdate is a partial update. Absent keys are left untouched; an
// explicit null on tax_treatment clears it.
type AccountUpdate struct {
	Name         *string          `json:"name"`
	Broker       *string          `json:"broker"`
	TaxTreatment Optional[string] `json:"tax_treatment"`
}

func (u *AccountUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return errors.New("name must not be empty")
	}
	if u.Broker != nil && !IsValidBroker(*u.Broker) {
		return errors.New("broker must be one of robinhood, merrill, other")
	}
	return nil
}

// Apply copies the provided fields onto the account.
func (u *AccountUpdate) Apply(a *Account) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.Broker != nil {
		a.Broker = *u.Broker
	}
	if u.TaxTreatment.Set {
		a.TaxTreatment = u.TaxTreatment.Value
	}
}

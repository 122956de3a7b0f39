package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format stored in date columns.
const DateLayout = "2006-01-02"

// Transaction is a dated monetary entry against one trust. Negative amounts are withdrawals.
type Transaction struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	TrustID         uint            `gorm:"index;not null"`
	Trust           Trust           `gorm:"foreignKey:TrustID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	TransactionDate string          `gorm:"size:10;not null;index"` // YYYY-MM-DD
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TransactionType string          `gorm:"size:64;not null"`
	Description     string          `gorm:"type:text"`
	CreatedByID     *uint           `gorm:"column:created_by;index"`
	CreatedBy       *User           `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

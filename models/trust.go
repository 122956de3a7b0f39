package models

import "time"

// Trust is a named legal/financial entity with an assigned trustee.
type Trust struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	Name            string  `gorm:"size:255;not null;index"`
	TrusteeName     string  `gorm:"size:255;not null"`
	DateEstablished *string `gorm:"size:10"` // YYYY-MM-DD
	Description     string  `gorm:"type:text"`
	Transactions    []Transaction
	Meetings        []Meeting
}

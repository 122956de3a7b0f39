package models

import "time"

// Meeting records a trustee meeting held for one trust.
type Meeting struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	TrustID     uint   `gorm:"index;not null"`
	Trust       Trust  `gorm:"foreignKey:TrustID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	MeetingDate string `gorm:"size:10;not null;index"` // YYYY-MM-DD
	MeetingTime string `gorm:"size:5"`                 // HH:MM, optional
	Location    string `gorm:"size:255"`
	Attendees   string `gorm:"type:text"`
	Notes       string `gorm:"type:text"`
	CreatedByID *uint  `gorm:"column:created_by;index"`
	CreatedBy   *User  `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

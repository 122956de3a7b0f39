package models

import (
	"time"
)

// User is an account allowed to sign in. Admins may register and delete other users.
type User struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	Username     string `gorm:"size:80;not null;uniqueIndex"`
	PasswordHash []byte `gorm:"column:password_hash;not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
}

// TableName keeps the singular "user" table name.
func (User) TableName() string {
	return "user"
}

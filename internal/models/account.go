package models

import (
	"time"
)

// Account is a marketplace user. Accounts are never hard-deleted.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Username     string    `gorm:"not null;size:80;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DisplayName  string    `gorm:"size:120" json:"display_name"`
	Role         Role      `gorm:"size:20;not null;default:'player';index" json:"role"`
	Active       bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

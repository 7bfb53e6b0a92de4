package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side half of a login. The signed token carries its
// ID; revoking the row ends the session even while the token is unexpired.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uint      `gorm:"not null;index" json:"account_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated login session tied to a refresh token.
// Expired rows are swept lazily by the session service on every read.
type Session struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	LastIP       string    `gorm:"size:45" json:"last_ip"`
	RefreshToken *string   `gorm:"size:128" json:"-"`
	ExpiresAfter time.Time `gorm:"not null;index" json:"expires_after"`
	CreatedAt    time.Time `json:"created_at"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:60;not null;uniqueIndex" json:"username"`
	Email    string `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Password string `gorm:"not null" json:"-"`
	// FullName is the display name the author filter matches against.
	FullName  string         `gorm:"size:120;not null" json:"full_name"`
	Posts     []Post         `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

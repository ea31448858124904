package store

import (
	"time"

	"gorm.io/datatypes"
)

// UserModel is the gorm persistence model for users.
type UserModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	Username     string `gorm:"uniqueIndex;size:64"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string
	FullName     string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SearchModel persists a finished search with its result payload.
type SearchModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	UserID       string `gorm:"index;size:64"`
	Destination  string `gorm:"size:64"`
	Status       string `gorm:"size:16"`
	Results      datatypes.JSON
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

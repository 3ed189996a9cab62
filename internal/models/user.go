package models

import "time"

// User represents a registered user of the service.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(128);not null" validate:"required"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // Never serialized
	CreatedAt    time.Time `json:"created_at"`
	Posts        []Post    `json:"-" gorm:"foreignKey:AuthorID"`
}

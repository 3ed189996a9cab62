package models

import "time"

// Like records that a user liked a post. The composite primary key doubles
// as the uniqueness constraint, so a user can like a given post only once.
type Like struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	PostID    uint      `json:"post_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
}

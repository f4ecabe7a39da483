package models

import (
	"time"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Filled at query time, not stored
	LikeCount    int64 `gorm:"-" json:"like_count"`
	CommentCount int64 `gorm:"-" json:"comment_count"`
	LikedByMe    bool  `gorm:"-" json:"liked_by_me"`
}

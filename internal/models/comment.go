package models

import (
	"time"
)

type Comment struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	PostID   uint     `gorm:"not null;index" json:"post_id"`
	Post     Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	UserID   uint     `gorm:"not null;index" json:"user_id"`
	User     User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID *uint    `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	Parent   *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	Body     string   `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Filled at query time, not stored
	LikeCount int64 `gorm:"-" json:"like_count"`
	LikedByMe bool  `gorm:"-" json:"liked_by_me"`
}

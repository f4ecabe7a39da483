package models

import (
	"time"
)

type KarmaEventType string

const (
	KarmaEventPostLike      KarmaEventType = "post_like"
	KarmaEventPostUnlike    KarmaEventType = "post_unlike"
	KarmaEventCommentLike   KarmaEventType = "comment_like"
	KarmaEventCommentUnlike KarmaEventType = "comment_unlike"
)

// KarmaEvent is an append-only ledger row. Rows are never updated or deleted;
// karma totals are always computed by summing Delta over a window.
// Exactly one of PostID/CommentID must be set, enforced by the check constraint.
type KarmaEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_karma_user_created" json:"user_id"` // Beneficiary (content author)
	User      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ActorID   uint           `gorm:"not null;index" json:"actor_id"` // Who liked/unliked
	Actor     User           `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	EventType KarmaEventType `gorm:"type:varchar(32);not null" json:"event_type"`
	Delta     int            `gorm:"not null" json:"delta"`
	PostID    *uint          `gorm:"index;check:chk_karma_one_target,(post_id IS NULL) <> (comment_id IS NULL)" json:"post_id"`
	CommentID *uint          `gorm:"index" json:"comment_id"`
	CreatedAt time.Time      `gorm:"index:idx_karma_user_created;index" json:"created_at"`
}

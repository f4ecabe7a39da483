package services

import (
	"errors"
	"fmt"

	"karmafeed/internal/db"
	"karmafeed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Karma deltas per target kind. Unlike events use the negated value.
const (
	DeltaPostLike    = 5
	DeltaCommentLike = 1
)

// ErrTargetNotFound is returned when the liked post/comment does not exist.
// Handlers map it to 404.
var ErrTargetNotFound = errors.New("target not found")

type ToggleResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}

// ToggleLike flips the like relation for one (target, user) pair. The intent
// (like vs unlike) comes from the caller, never from pre-reading current
// state: the like path inserts with ON CONFLICT DO NOTHING and treats zero
// affected rows as "already liked", the unlike path deletes and treats zero
// affected rows as "already unliked". The relation mutation and the matching
// ledger append commit in one transaction, so a duplicate request can never
// double-credit karma and a failed append never leaves an orphan like.
//
// The returned count is recomputed from the like table after commit rather
// than kept as a running counter, so it always reflects committed state.
func ToggleLike(kind TargetKind, targetID uint, actor *models.User, like bool) (ToggleResult, error) {
	switch kind {
	case TargetPost:
		return togglePostLike(targetID, actor, like)
	case TargetComment:
		return toggleCommentLike(targetID, actor, like)
	default:
		return ToggleResult{}, fmt.Errorf("unknown target kind %q", kind)
	}
}

func togglePostLike(postID uint, actor *models.User, like bool) (ToggleResult, error) {
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ToggleResult{}, ErrTargetNotFound
		}
		return ToggleResult{}, fmt.Errorf("load post %d: %w", postID, err)
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if like {
			rel := models.PostLike{PostID: post.ID, UserID: actor.ID}
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rel)
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected == 0 {
				// Lost the race to a duplicate like (or repeat request).
				// Already in the desired state: no ledger append.
				return nil
			}
			return tx.Create(&models.KarmaEvent{
				UserID:    post.UserID,
				ActorID:   actor.ID,
				EventType: models.KarmaEventPostLike,
				Delta:     DeltaPostLike,
				PostID:    &post.ID,
			}).Error
		}

		del := tx.Where("post_id = ? AND user_id = ?", post.ID, actor.ID).Delete(&models.PostLike{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			// Nothing to remove: already unliked.
			return nil
		}
		return tx.Create(&models.KarmaEvent{
			UserID:    post.UserID,
			ActorID:   actor.ID,
			EventType: models.KarmaEventPostUnlike,
			Delta:     -DeltaPostLike,
			PostID:    &post.ID,
		}).Error
	})
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle post like: %w", err)
	}

	var count int64
	if err := db.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
		return ToggleResult{}, fmt.Errorf("count post likes: %w", err)
	}
	return ToggleResult{Liked: like, LikeCount: count}, nil
}

func toggleCommentLike(commentID uint, actor *models.User, like bool) (ToggleResult, error) {
	var comment models.Comment
	if err := db.DB.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ToggleResult{}, ErrTargetNotFound
		}
		return ToggleResult{}, fmt.Errorf("load comment %d: %w", commentID, err)
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if like {
			rel := models.CommentLike{CommentID: comment.ID, UserID: actor.ID}
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rel)
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected == 0 {
				return nil
			}
			return tx.Create(&models.KarmaEvent{
				UserID:    comment.UserID,
				ActorID:   actor.ID,
				EventType: models.KarmaEventCommentLike,
				Delta:     DeltaCommentLike,
				CommentID: &comment.ID,
			}).Error
		}

		del := tx.Where("comment_id = ? AND user_id = ?", comment.ID, actor.ID).Delete(&models.CommentLike{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return nil
		}
		return tx.Create(&models.KarmaEvent{
			UserID:    comment.UserID,
			ActorID:   actor.ID,
			EventType: models.KarmaEventCommentUnlike,
			Delta:     -DeltaCommentLike,
			CommentID: &comment.ID,
		}).Error
	})
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle comment like: %w", err)
	}

	var count int64
	if err := db.DB.Model(&models.CommentLike{}).Where("comment_id = ?", comment.ID).Count(&count).Error; err != nil {
		return ToggleResult{}, fmt.Errorf("count comment likes: %w", err)
	}
	return ToggleResult{Liked: like, LikeCount: count}, nil
}

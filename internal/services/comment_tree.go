package services

import (
	"fmt"
	"time"

	"karmafeed/internal/db"
	"karmafeed/internal/models"
	"karmafeed/internal/utils"
)

// CommentNode is one node of the reply forest returned for a post detail.
type CommentNode struct {
	ID        uint           `json:"id"`
	Body      string         `json:"body"`
	BodyHTML  string         `json:"body_html"`
	Author    UserRef        `json:"author"`
	CreatedAt time.Time      `json:"created_at"`
	LikeCount int64          `json:"like_count"`
	LikedByMe bool           `json:"liked_by_me"`
	Children  []*CommentNode `json:"children"`
}

// LoadPostComments returns the flat comment list for a post, ordered by
// creation time ascending, with like_count and liked_by_me filled in two
// batch queries instead of per-row lookups. viewerID 0 means anonymous.
func LoadPostComments(postID uint, viewerID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := db.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("load comments for post %d: %w", postID, err)
	}
	if len(comments) == 0 {
		return comments, nil
	}

	commentIDs := make([]uint, len(comments))
	for i, c := range comments {
		commentIDs[i] = c.ID
	}

	type countRow struct {
		CommentID uint
		Count     int64
	}
	var counts []countRow
	if err := db.DB.Model(&models.CommentLike{}).
		Select("comment_id, COUNT(*) AS count").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count comment likes: %w", err)
	}
	countMap := make(map[uint]int64, len(counts))
	for _, r := range counts {
		countMap[r.CommentID] = r.Count
	}

	likedMap := make(map[uint]bool)
	if viewerID > 0 {
		var likedIDs []uint
		if err := db.DB.Model(&models.CommentLike{}).
			Where("user_id = ? AND comment_id IN ?", viewerID, commentIDs).
			Pluck("comment_id", &likedIDs).Error; err != nil {
			return nil, fmt.Errorf("load viewer comment likes: %w", err)
		}
		for _, id := range likedIDs {
			likedMap[id] = true
		}
	}

	for i := range comments {
		comments[i].LikeCount = countMap[comments[i].ID]
		comments[i].LikedByMe = likedMap[comments[i].ID]
	}
	return comments, nil
}

// BuildCommentTree reconstructs the reply forest from a flat list sorted by
// creation time ascending. One pass groups children under their parent id and
// collects parentless comments as roots; materialization then visits each
// node once, so both steps are O(n). Because the input is chronological and
// the grouping preserves insertion order, every sibling list comes out oldest
// first. No cycle check: a parent always predates its children on the same
// post, so the rows form a forest by construction.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	byParent := make(map[uint][]models.Comment)
	var roots []models.Comment
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	forest := make([]*CommentNode, 0, len(roots))
	for _, c := range roots {
		forest = append(forest, buildCommentNode(c, byParent))
	}
	return forest
}

func buildCommentNode(c models.Comment, byParent map[uint][]models.Comment) *CommentNode {
	children := make([]*CommentNode, 0, len(byParent[c.ID]))
	for _, child := range byParent[c.ID] {
		children = append(children, buildCommentNode(child, byParent))
	}
	return &CommentNode{
		ID:        c.ID,
		Body:      c.Body,
		BodyHTML:  utils.RenderMarkdown(c.Body),
		Author:    UserRef{ID: c.UserID, Username: c.User.Username},
		CreatedAt: c.CreatedAt,
		LikeCount: c.LikeCount,
		LikedByMe: c.LikedByMe,
		Children:  children,
	}
}

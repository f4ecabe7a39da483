package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"karmafeed/internal/db"
	"karmafeed/internal/middleware"
	"karmafeed/internal/models"
	"karmafeed/internal/services"
	"karmafeed/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

type createCommentInput struct {
	Body     string `json:"body"`
	ParentID *uint  `json:"parent_id"`
}

// Create adds a comment (optionally a reply) to a post. A parent that does
// not exist on the same post is rejected: cross-post parenting would corrupt
// the reply forest.
func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CurrentUserKey).(*models.User)

	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil || postID <= 0 {
		jsonError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "post not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "failed to load post")
		return
	}

	var input createCommentInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Body == "" {
		jsonError(c, http.StatusBadRequest, "body is required")
		return
	}

	if input.ParentID != nil {
		var parent models.Comment
		if err := db.DB.Where("id = ? AND post_id = ?", *input.ParentID, post.ID).
			First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				jsonError(c, http.StatusNotFound, "parent comment not found")
				return
			}
			jsonError(c, http.StatusInternalServerError, "failed to load parent comment")
			return
		}
	}

	comment := models.Comment{
		PostID:   post.ID,
		UserID:   user.ID,
		ParentID: input.ParentID,
		Body:     input.Body,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to create comment")
		return
	}

	c.JSON(http.StatusCreated, services.CommentNode{
		ID:        comment.ID,
		Body:      comment.Body,
		BodyHTML:  utils.RenderMarkdown(comment.Body),
		Author:    services.UserRef{ID: user.ID, Username: user.Username},
		CreatedAt: comment.CreatedAt,
		LikeCount: 0,
		LikedByMe: false,
		Children:  []*services.CommentNode{},
	})
}

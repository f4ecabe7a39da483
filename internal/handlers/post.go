package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"karmafeed/internal/db"
	"karmafeed/internal/middleware"
	"karmafeed/internal/models"
	"karmafeed/internal/services"
	"karmafeed/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

type postPayload struct {
	ID           uint             `json:"id"`
	Body         string           `json:"body"`
	BodyHTML     string           `json:"body_html"`
	Author       services.UserRef `json:"author"`
	CreatedAt    time.Time        `json:"created_at"`
	LikeCount    int64            `json:"like_count"`
	CommentCount int64            `json:"comment_count"`
	LikedByMe    bool             `json:"liked_by_me"`
}

func toPostPayload(p models.Post) postPayload {
	return postPayload{
		ID:           p.ID,
		Body:         p.Body,
		BodyHTML:     utils.RenderMarkdown(p.Body),
		Author:       services.UserRef{ID: p.UserID, Username: p.User.Username},
		CreatedAt:    p.CreatedAt,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		LikedByMe:    p.LikedByMe,
	}
}

// fillPostAnnotations batch-fills like_count, comment_count and liked_by_me
// so list pages never issue per-row queries. viewerID 0 means anonymous.
func fillPostAnnotations(posts []models.Post, viewerID uint) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int64
	}

	var likeCounts []countResult
	db.DB.Model(&models.PostLike{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&likeCounts)
	likeMap := make(map[uint]int64, len(likeCounts))
	for _, r := range likeCounts {
		likeMap[r.PostID] = r.Count
	}

	var commentCounts []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&commentCounts)
	commentMap := make(map[uint]int64, len(commentCounts))
	for _, r := range commentCounts {
		commentMap[r.PostID] = r.Count
	}

	likedMap := make(map[uint]bool)
	if viewerID > 0 {
		var likedIDs []uint
		db.DB.Model(&models.PostLike{}).
			Where("user_id = ? AND post_id IN ?", viewerID, postIDs).
			Pluck("post_id", &likedIDs)
		for _, id := range likedIDs {
			likedMap[id] = true
		}
	}

	for i := range posts {
		posts[i].LikeCount = likeMap[posts[i].ID]
		posts[i].CommentCount = commentMap[posts[i].ID]
		posts[i].LikedByMe = likedMap[posts[i].ID]
	}
}

// List returns posts newest first.
func (h *PostHandler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	perPage := 30
	offset := (page - 1) * perPage

	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	var posts []models.Post
	if err := db.DB.Preload("User").
		Order("created_at DESC").
		Limit(perPage).
		Offset(offset).
		Find(&posts).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	fillPostAnnotations(posts, viewerID)

	payload := make([]postPayload, 0, len(posts))
	for _, p := range posts {
		payload = append(payload, toPostPayload(p))
	}
	c.JSON(http.StatusOK, payload)
}

type createPostInput struct {
	Body string `json:"body"`
}

// Create stores a new post for the acting user.
func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CurrentUserKey).(*models.User)

	var input createPostInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Body == "" {
		jsonError(c, http.StatusBadRequest, "body is required")
		return
	}

	post := models.Post{
		UserID: user.ID,
		Body:   input.Body,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to create post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         post.ID,
		"body":       post.Body,
		"created_at": post.CreatedAt,
	})
}

// Detail returns one post plus its reply forest.
func (h *PostHandler) Detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		jsonError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	var post models.Post
	if err := db.DB.Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "post not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "failed to load post")
		return
	}

	posts := []models.Post{post}
	fillPostAnnotations(posts, viewerID)
	post = posts[0]

	comments, err := services.LoadPostComments(post.ID, viewerID)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to load comments")
		return
	}
	tree := services.BuildCommentTree(comments)

	payload := toPostPayload(post)
	c.JSON(http.StatusOK, gin.H{
		"id":          payload.ID,
		"body":        payload.Body,
		"body_html":   payload.BodyHTML,
		"author":      payload.Author,
		"created_at":  payload.CreatedAt,
		"like_count":  payload.LikeCount,
		"liked_by_me": payload.LikedByMe,
		"comments":    tree,
	})
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"karmafeed/internal/middleware"
	"karmafeed/internal/models"
	"karmafeed/internal/services"
	"karmafeed/internal/utils"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct{}

func NewLikeHandler() *LikeHandler {
	return &LikeHandler{}
}

// LikePost handles POST /api/posts/:id/like
func (h *LikeHandler) LikePost(c *gin.Context) {
	h.toggle(c, services.TargetPost, true)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (h *LikeHandler) UnlikePost(c *gin.Context) {
	h.toggle(c, services.TargetPost, false)
}

// LikeComment handles POST /api/comments/:id/like
func (h *LikeHandler) LikeComment(c *gin.Context) {
	h.toggle(c, services.TargetComment, true)
}

// UnlikeComment handles DELETE /api/comments/:id/like
func (h *LikeHandler) UnlikeComment(c *gin.Context) {
	h.toggle(c, services.TargetComment, false)
}

// toggle dispatches on HTTP method intent, not on current state; the service
// resolves duplicates idempotently.
func (h *LikeHandler) toggle(c *gin.Context, kind services.TargetKind, like bool) {
	user := c.MustGet(middleware.CurrentUserKey).(*models.User)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		jsonError(c, http.StatusBadRequest, "invalid id")
		return
	}

	result, err := services.ToggleLike(kind, uint(id), user, like)
	if err != nil {
		if errors.Is(err, services.ErrTargetNotFound) {
			jsonError(c, http.StatusNotFound, string(kind)+" not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "failed to toggle like")
		return
	}

	// Ledger contents changed; drop the cached leaderboard.
	utils.GetCache().Delete(leaderboardCacheKey)

	c.JSON(http.StatusOK, result)
}

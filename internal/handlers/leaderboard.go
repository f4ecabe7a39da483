package handlers

import (
	"net/http"
	"time"

	"karmafeed/internal/services"
	"karmafeed/internal/utils"

	"github.com/gin-gonic/gin"
)

const leaderboardCacheKey = "leaderboard"

type LeaderboardHandler struct{}

func NewLeaderboardHandler() *LeaderboardHandler {
	return &LeaderboardHandler{}
}

// Get returns the trailing-24h karma leaderboard. The payload is identical
// for every viewer, so it is cached briefly and invalidated on toggles.
func (h *LeaderboardHandler) Get(c *gin.Context) {
	if cached := utils.GetCache().Get(leaderboardCacheKey); cached != nil {
		if entries, ok := cached.([]services.LeaderboardEntry); ok {
			c.JSON(http.StatusOK, entries)
			return
		}
	}

	entries, err := services.Leaderboard(time.Now())
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}

	utils.GetCache().Set(leaderboardCacheKey, entries, 1*time.Minute)

	c.JSON(http.StatusOK, entries)
}

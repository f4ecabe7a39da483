package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// jsonError writes the uniform error payload.
func jsonError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// APIRoot lists the top-level resources.
func APIRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"posts":       "/api/posts",
		"leaderboard": "/api/leaderboard",
	})
}

package middleware

import (
	"net/http"
	"strings"

	"karmafeed/internal/db"
	"karmafeed/internal/models"

	"github.com/gin-gonic/gin"
)

const CurrentUserKey = "current_user"

// HeaderAuth resolves the acting user from the X-User header and stashes it
// in the request context. Unknown usernames are created on first sight, so
// identity management stays entirely outside this service. Requests without
// the header proceed anonymously.
func HeaderAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.GetHeader("X-User"))
		if username != "" {
			var user models.User
			err := db.DB.Where("username = ?", username).
				FirstOrCreate(&user, models.User{Username: username}).Error
			if err == nil {
				c.Set(CurrentUserKey, &user)
			}
		}
		c.Next()
	}
}

// UserRequired guards mutating routes: no resolved identity means 401.
func UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CurrentUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the acting user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(CurrentUserKey); exists {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

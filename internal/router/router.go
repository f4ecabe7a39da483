package router

import (
	"karmafeed/internal/handlers"
	"karmafeed/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	likeHandler := handlers.NewLikeHandler()
	leaderboardHandler := handlers.NewLeaderboardHandler()

	api := r.Group("/api")
	api.Use(middleware.HeaderAuth())
	{
		// Reads work anonymously; liked_by_me is false without an identity.
		api.GET("", handlers.APIRoot)
		api.GET("/posts", postHandler.List)
		api.GET("/posts/:id", postHandler.Detail)
		api.GET("/leaderboard", leaderboardHandler.Get)

		// Mutations require a resolved identity.
		authed := api.Group("")
		authed.Use(middleware.UserRequired())
		{
			authed.POST("/posts", postHandler.Create)
			authed.POST("/posts/:id/comments", commentHandler.Create)
			authed.POST("/posts/:id/like", likeHandler.LikePost)
			authed.DELETE("/posts/:id/like", likeHandler.UnlikePost)
			authed.POST("/comments/:id/like", likeHandler.LikeComment)
			authed.DELETE("/comments/:id/like", likeHandler.UnlikeComment)
		}
	}
}

package api

import (
	"github.com/gin-gonic/gin"
	"github.com/studyloot/studyloot-backend/internal/collection"
	"github.com/studyloot/studyloot-backend/internal/favorite"
	"github.com/studyloot/studyloot-backend/internal/note"
	"github.com/studyloot/studyloot-backend/internal/platform/health"
	"github.com/studyloot/studyloot-backend/internal/progression"
	"github.com/studyloot/studyloot-backend/internal/review"
	"github.com/studyloot/studyloot-backend/internal/user"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 运维相关的路由
		api.GET("/health", health.StatusHandler)

		// 认证相关的路由
		auth := api.Group("/auth")
		{
			auth.POST("/register", user.RegisterHandler)
			auth.POST("/login", user.LoginHandler)
		}

		// 笔记相关的路由
		notes := api.Group("/notes")
		{
			notes.GET("", note.ListHandler)
			notes.POST("", user.RequireAuth(), note.CreateHandler)
			notes.GET("/trending", note.TrendingHandler)
			notes.GET("/search", note.SearchHandler)
			notes.GET("/:id", note.GetHandler)
			notes.POST("/:id/download", user.RequireAuth(), note.DownloadHandler)
		}

		// 评价相关的路由
		reviews := api.Group("/reviews")
		{
			reviews.GET("/:noteId", review.ListHandler)
			reviews.POST("/:noteId", user.RequireAuth(), review.SubmitHandler)
		}

		// 合集相关的路由
		collections := api.Group("/collections")
		{
			collections.POST("", user.RequireAuth(), collection.CreateHandler)
			collections.GET("/my", user.RequireAuth(), collection.MyCollectionsHandler)
			collections.GET("/:id", user.OptionalAuth(), collection.GetHandler)
			collections.PUT("/:id", user.RequireAuth(), collection.UpdateHandler)
			collections.DELETE("/:id", user.RequireAuth(), collection.DeleteHandler)
			collections.POST("/:id/notes/:noteId", user.RequireAuth(), collection.AddNoteHandler)
			collections.DELETE("/:id/notes/:noteId", user.RequireAuth(), collection.RemoveNoteHandler)
		}

		// 用户相关的路由
		users := api.Group("/users")
		{
			users.GET("/leaderboard/top", progression.TopUsersHandler)
			users.GET("/favorites/list", user.RequireAuth(), favorite.ListHandler)
			users.POST("/favorites/:noteId", user.RequireAuth(), favorite.AddHandler)
			users.DELETE("/favorites/:noteId", user.RequireAuth(), favorite.RemoveHandler)
			users.PUT("/profile", user.RequireAuth(), user.UpdateProfileHandler)
			users.GET("/:id", user.OptionalAuth(), note.AuthorProfileHandler)
		}
	}
}

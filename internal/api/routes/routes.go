package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/navai/internal/api/handlers"
	"github.com/yoockh/navai/internal/api/middleware"
)

type Deps struct {
	Interview *handlers.InterviewHandler
	Auth      middleware.JWTConfig
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.Auth))

	auth.POST("/interviews", d.Interview.Start)
	auth.GET("/interviews/:interview_id", d.Interview.Get)
	auth.POST("/interviews/:interview_id/chat", d.Interview.Chat)
	auth.POST("/interviews/:interview_id/audio", d.Interview.Audio)

	owners := auth.Group("/users/:owner_id")
	owners.Use(middleware.RequireOwnerOrRole("owner_id", "admin"))
	owners.GET("/interviews", d.Interview.ListByOwner)
	owners.GET("/interviews/recent", d.Interview.Recent)
}

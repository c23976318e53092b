package router

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/waveline/backstage/internal/handler"
	"github.com/waveline/backstage/internal/middleware"
)

// Handlers holds all HTTP handlers
type Handlers struct {
	Auth         *handler.AuthHandler
	Artist       *handler.ArtistHandler
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
}

// SetupRouter sets up all routes
func SetupRouter(h *server.Hertz, handlers *Handlers) {
	// CORS middleware
	h.Use(middleware.CORS())

	// Health check
	h.GET("/health", func(ctx context.Context, c *app.RequestContext) {
		c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes (no auth required)
	authGroup := h.Group("/auth")
	{
		authGroup.POST("/register", handlers.Auth.Register)
		authGroup.POST("/login", handlers.Auth.Login)
	}
	h.POST("/auth/logout", middleware.JWTAuth(), handlers.Auth.Logout)

	// Artist routes (auth required)
	artistGroup := h.Group("/artist", middleware.JWTAuth())
	{
		artistGroup.POST("/become", handlers.Artist.BecomeArtist)
		artistGroup.GET("/info", handlers.Artist.GetArtist)
		artistGroup.GET("/mine", handlers.Artist.GetOwnArtist)
	}

	// Conversation routes (auth required)
	convGroup := h.Group("/conversation", middleware.JWTAuth())
	{
		convGroup.POST("/open", handlers.Conversation.Open)
		convGroup.POST("/open_with_person", handlers.Conversation.OpenWithPerson)
		convGroup.GET("/list", handlers.Conversation.List)
		convGroup.GET("/info", handlers.Conversation.GetInfo)
		convGroup.POST("/mark_read", handlers.Conversation.MarkRead)
		convGroup.GET("/unread_count", handlers.Conversation.UnreadCount)
	}

	// Message routes (auth required)
	msgGroup := h.Group("/msg", middleware.JWTAuth())
	{
		msgGroup.POST("/send", handlers.Message.Send)
		msgGroup.GET("/history", handlers.Message.History)
	}
}

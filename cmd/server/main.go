package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/waveline/backstage/internal/config"
	"github.com/waveline/backstage/internal/handler"
	"github.com/waveline/backstage/internal/repository"
	"github.com/waveline/backstage/internal/router"
	"github.com/waveline/backstage/internal/service"
	"github.com/waveline/backstage/pkg/constant"
	"github.com/waveline/backstage/pkg/logger"
)

func main() {
	ctx := context.TODO()

	// Load configuration
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		logger.CtxError(ctx, "failed to load config: %v", err)
		panic(err)
	}

	logger.SetLevel(cfg.Server.LogLevel)
	logger.CtxInfo(ctx, "config loaded: mode=%s", cfg.Server.Mode)

	// Initialize Redis key prefix
	constant.InitRedisKeyPrefix(cfg.Redis.KeyPrefix)
	logger.CtxInfo(ctx, "redis key prefix: %s", constant.GetRedisKeyPrefix())

	// Initialize repositories
	repos, err := repository.NewRepositories(cfg)
	if err != nil {
		logger.CtxError(ctx, "failed to initialize repositories: %v", err)
		panic(err)
	}
	defer repos.Close()

	// Check database connection
	if err := repos.CheckConnection(ctx); err != nil {
		logger.CtxError(ctx, "database connection check failed: %v", err)
		panic(err)
	}
	logger.CtxInfo(ctx, "database connection established")

	// Initialize services
	authService := service.NewAuthService(repos.Account, cfg, repos.Redis)
	artistService := service.NewArtistService(repos.Artist)
	convService := service.NewConversationService(repos.Conversation, repos.Message, repos.Artist, repos.Account, repos.Badge)
	msgService := service.NewMessageService(repos.Message, repos.Conversation, repos.Badge)

	// Initialize handlers
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Artist:       handler.NewArtistHandler(artistService),
		Conversation: handler.NewConversationHandler(convService, artistService),
		Message:      handler.NewMessageHandler(msgService, artistService),
	}

	// Create Hertz server
	h := server.Default(
		server.WithHostPorts(fmt.Sprintf(":%d", cfg.Server.HTTPPort)),
	)

	// Setup routes
	router.SetupRouter(h, handlers)

	logger.CtxInfo(ctx, "server starting on port %d", cfg.Server.HTTPPort)

	// Start server in goroutine
	go func() {
		h.Spin()
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.CtxInfo(ctx, "shutting down server...")

	// Graceful shutdown
	if err := h.Shutdown(ctx); err != nil {
		logger.CtxError(ctx, "server shutdown error: %v", err)
	}

	logger.CtxInfo(ctx, "server stopped")
}

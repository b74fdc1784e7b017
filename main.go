package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/inkwell/backend/internal/config"
	"github.com/inkwell/backend/internal/db"
	"github.com/inkwell/backend/internal/handler"
	"github.com/inkwell/backend/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := &db.Postgres{Pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	authService, err := service.NewAuthService(store, cfg.Auth)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}
	essayService, err := service.NewEssayService(store, cfg.Essay)
	if err != nil {
		logger.Error("invalid essay configuration", "error", err)
		os.Exit(1)
	}

	authHandler := handler.NewAuthHandler(authService, logger)
	essayHandler := handler.NewEssayHandler(essayService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RequestLogMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.Server.CORSAllowedOrigins, true))

	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/config", authHandler.Config)
	auth.GET("/me", handler.AuthMiddleware(authService), authHandler.Me)

	essays := api.Group("/essays")
	essays.GET("/public", essayHandler.ListPublic)
	essays.GET("/:id", handler.OptionalAuthMiddleware(authService), essayHandler.Get)

	owned := api.Group("/essays", handler.AuthMiddleware(authService))
	owned.GET("", essayHandler.ListMine)
	owned.POST("", essayHandler.Create)
	owned.PUT("/:id", essayHandler.Update)
	owned.PUT("/:id/publish", essayHandler.Publish)
	owned.PUT("/:id/unpublish", essayHandler.Unpublish)
	owned.DELETE("/:id", essayHandler.Delete)

	addr := ":" + cfg.Server.Port
	logger.Info("starting server", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

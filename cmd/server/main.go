package main

import (
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mikeboe/research-assistant/pkg/config"
	"github.com/mikeboe/research-assistant/pkg/grounding"
	"github.com/mikeboe/research-assistant/pkg/server"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	searcher, err := grounding.NewGeminiSearcher(context.Background(), cfg.ApiKey, cfg.Model, cfg.RequestTimeout)
	if err != nil {
		slog.Error("Failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	if cfg.ApiKey == "" {
		slog.Warn("No API key configured; every research task will fail until GEMINI_API_KEY is set")
	}

	sessions := server.NewSessionStore(searcher, cfg.SessionTTL, cfg.SessionLogLimit)
	svc := server.NewService(searcher, sessions, searcher.Model())
	handler := server.NewHandler(svc)

	r := gin.Default()

	allowAll := slices.Contains(cfg.CORSOrigins, "*")
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Mcp-Session-Id"},
		ExposeHeaders:    []string{"Content-Length", "Mcp-Session-Id"},
		AllowCredentials: !allowAll,
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	handler.RegisterRoutes(r)

	slog.Info("Server starting", "port", cfg.Port, "model", searcher.Model())
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

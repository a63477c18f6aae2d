package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/twittor/backend/internal/database"
	"github.com/anonto42/twittor/backend/internal/router"
	"github.com/anonto42/twittor/backend/pkg/config"
	"github.com/anonto42/twittor/backend/pkg/logger"
	"github.com/anonto42/twittor/backend/pkg/mailer"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger.Initialize(cfg.LogLevel, cfg.LogFile)
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if err := database.Migrate(context.Background(), db.Postgres); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	m, err := mailer.New(cfg.Mail.Driver, cfg.Mail.AWSRegion, cfg.Mail.Sender)
	if err != nil {
		logger.Log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, cfg, db, m); err != nil {
		logger.Log.Fatal("Failed to configure routes", zap.Error(err))
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Log.Info("Metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	// Start server
	go func() {
		logger.Log.Info("Server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(ctx); err != nil {
		logger.Log.Error("Metrics server shutdown failed", zap.Error(err))
	}
}

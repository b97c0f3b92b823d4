package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dodgedlol2/KaspaMetrics/internal/api"
	"github.com/dodgedlol2/KaspaMetrics/internal/cache"
	"github.com/dodgedlol2/KaspaMetrics/internal/config"
	"github.com/dodgedlol2/KaspaMetrics/internal/database"
	"github.com/dodgedlol2/KaspaMetrics/internal/services"
	"github.com/dodgedlol2/KaspaMetrics/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.WithError(err).Error("telemetry shutdown failed")
		}
	}()

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redis.Close()

	repository := database.NewPriceRepository(db.Pool)
	seriesCache := cache.NewRedisSeriesCache(redis.Client, cfg.Analysis.SeriesCacheTTLDuration(), logger)
	source := services.NewCachedPriceSource(repository, seriesCache)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.Dependencies{
		Source: source,
		DB:     db,
		Redis:  redis,
		Config: cfg,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       15 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":        cfg.Server.Port,
			"environment": cfg.Environment,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited gracefully")
	return nil
}

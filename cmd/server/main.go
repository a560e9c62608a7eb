// cmd/server/main.go
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
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/prodcrm-backend/internal/config"
	"github.com/javajoker/prodcrm-backend/internal/database"
	"github.com/javajoker/prodcrm-backend/internal/i18n"
	"github.com/javajoker/prodcrm-backend/internal/repositories"
	"github.com/javajoker/prodcrm-backend/internal/router"
	"github.com/javajoker/prodcrm-backend/internal/services"
	"github.com/javajoker/prodcrm-backend/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := setupLogger(cfg.Log)
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.LocalesPath, cfg.I18n.DefaultLocale); err != nil {
		logger.Fatalf("Failed to initialize i18n: %v", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	store := repositories.NewGormStore(db)

	ctx := context.Background()
	seeded, err := services.NewAdminService(store, services.NewAuditService(store.Audit(), logger)).EnsureAdmin(ctx, cfg.Admin)
	switch {
	case err != nil:
		logger.WithError(err).Warn("Admin seed skipped")
	case seeded:
		logger.WithField("email", cfg.Admin.Email).Info("Default admin user created")
	}

	deps := router.Dependencies{Store: store, Logger: logger}

	// Redis only backs the stats cache, so a failed connection is not fatal
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unavailable, production stats will not be cached")
		} else {
			logger.Info("Connected to redis")
		}
		deps.Cache = services.NewRedisStatsCache(rdb, cfg.Redis.StatsTTL)
	}

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	deps.Storage = storageService

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r, stopRouter := router.Initialize(cfg, deps)
	defer stopRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.StandardLogger()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yopdevs/platform/backend/internal/jobs"
	"github.com/yopdevs/platform/backend/internal/metrics"
	"github.com/yopdevs/platform/backend/internal/router"
	"github.com/yopdevs/platform/backend/pkg/config"
	"github.com/yopdevs/platform/backend/pkg/firebase"
	"github.com/yopdevs/platform/backend/pkg/logger"
	"github.com/yopdevs/platform/backend/validators"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}
	logger.InitLogger(cfg.LogLevel)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize databases")
	}
	defer db.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize Firebase")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	app, err := router.SetupRoutes(e, router.Dependencies{
		Config:   cfg,
		Postgres: db.Postgres,
		Mongo:    db.Mongo,
		Redis:    db.Redis,
		Firebase: firebaseApp,
		Metrics:  metrics.New(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to set up routes")
	}

	retention, err := jobs.StartNotificationRetention(app.Notifications, cfg.NotificationRetention, cfg.Location)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to schedule notification retention")
	}

	// Start server
	go func() {
		logger.Log.WithField("port", cfg.Port).Info("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	<-retention.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Graceful shutdown failed")
	}
}

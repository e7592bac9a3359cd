// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/reorder/internal/api"
	"github.com/andresuchdata/reorder/internal/cache"
	"github.com/andresuchdata/reorder/internal/config"
	"github.com/andresuchdata/reorder/internal/drive"
	"github.com/andresuchdata/reorder/internal/repository/postgres"
	"github.com/andresuchdata/reorder/internal/scheduler"
	"github.com/andresuchdata/reorder/internal/service"
	"github.com/andresuchdata/reorder/internal/storage"
	"github.com/andresuchdata/reorder/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	repo := postgres.NewScheduleRepository(db)

	scheduleCache, err := cache.NewScheduleCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		scheduleCache = cache.NewNoopScheduleCache()
	}

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		store = minioClient
	}

	scheduleService := service.NewScheduleService(repo, scheduleCache, store, cfg)

	// Demand sync from Drive is optional; without credentials the server
	// only serves uploads and manual regeneration.
	var demandSync *drive.DemandSync
	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(cfg.Drive.CredentialsJSON)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize Drive service")
		}
		demandSync = drive.NewDemandSync(driveService, repo, cfg.Drive.DemandFolderID, cfg.App.UploadDir)
	}

	sched := scheduler.New(cfg.Drive.SyncSchedule, demandSync, scheduleService)
	if err := sched.Start(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer sched.Stop()

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{ScheduleService: scheduleService}, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

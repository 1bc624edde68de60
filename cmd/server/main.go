package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/fairway/api"
	embedded "github.com/garnizeh/fairway/db"
	"github.com/garnizeh/fairway/internal/app"
	"github.com/garnizeh/fairway/internal/config"
	"github.com/garnizeh/fairway/internal/db"
	"github.com/garnizeh/fairway/internal/metrics"
	"github.com/garnizeh/fairway/internal/queue"
	"github.com/garnizeh/fairway/internal/repository/sqlite"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	logger.Info("starting fairway server", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	// Open database connection and bring the schema up to date
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, embedded.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	collector := metrics.NewCollector(nil)

	// Background delivery workers
	repo := sqlite.New(database, logger)
	handlers := map[string]queue.Handler{
		app.DeliverNotificationJob: queue.NotificationDelivery(repo, logger),
	}
	workerCtx, stopWorkers := context.WithCancel(ctx)
	pool := queue.NewWorkerPool(repo, handlers, logger, collector, cfg.QueueWorkers)
	pool.Start(workerCtx)

	handler := api.SetupRoutes(cfg, version, buildTime, database, collector)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	pool.Stop()

	// Close database connection
	if err := database.Close(); err != nil {
		logger.Error("error closing DB", slog.Any("err", err))
	}

	logger.Info("server exited")
}

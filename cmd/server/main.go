/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the date range engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env, parse command-line flags, load configuration
  2. Initialize logging and error reporting
  3. Initialize SQLite store (runs migrations)
  4. Wire generator, period search and API handler
  5. Start the autogeneration scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (default: ./config/config.yaml or
           ./config.yaml when present)

ENVIRONMENT:
  DATERANGE_SERVER_PORT, DATERANGE_DB_PATH, DATERANGE_LOG_LEVEL,
  DATERANGE_SENTRY_DSN, DATERANGE_AUTOGENERATION_SCHEDULE,
  DATERANGE_ENTRIES_ASSIGN_TYPE_CODE ... (see config/config.go)
  A .env file in the working directory is loaded first.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler (waits for a running sweep)
  4. Close database connection, flush logs and Sentry

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration keys
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/daterange-engine/api"
	"github.com/warp/daterange-engine/config"
	"github.com/warp/daterange-engine/daterange"
	"github.com/warp/daterange-engine/entries"
	"github.com/warp/daterange-engine/logging"
	"github.com/warp/daterange-engine/observability"
	"github.com/warp/daterange-engine/search"
	"github.com/warp/daterange-engine/store/sqlite"
	"go.uber.org/zap"
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	// Flags
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logs, err := logging.Init(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logs.Closer()
	logger := logs.Base

	flush, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Env, cfg.Sentry.Release)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		observability.CaptureErr(err)
		logger.Error("server stopped with error", zap.Error(err))
		flush()
		logs.Closer()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Domain services
	gen := daterange.NewGenerator(store, logger.Named("generator"))
	svc := &entries.Service{
		Store:    store,
		Resolver: search.NewResolver(entries.DateColumn, store),
		Assigner: &search.Assigner{
			Types:      store,
			Query:      store,
			Table:      entries.Table,
			DateColumn: entries.DateColumn,
			TypeCode:   cfg.Entries.AssignTypeCode,
		},
		Ranges: store,
	}

	scheduler := api.NewAutogenerationScheduler(gen, store, cfg.Autogeneration.Schedule, logger.Named("scheduler"))
	scheduler.Enabled = cfg.Autogeneration.Enabled
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	handler := api.NewHandler(store, gen, svc, scheduler, logger.Named("http"))
	router := api.NewRouter(handler, cfg.Server.CORS.AllowOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Server.Port),
			zap.String("db", cfg.Database.Path))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/backmon-go/internal/config"
	"github.com/olegiv/backmon-go/internal/handler"
	"github.com/olegiv/backmon-go/internal/middleware"
	"github.com/olegiv/backmon-go/internal/render"
	"github.com/olegiv/backmon-go/internal/scheduler"
	"github.com/olegiv/backmon-go/internal/service"
	"github.com/olegiv/backmon-go/internal/store"
	"github.com/olegiv/backmon-go/internal/webhook"
	"github.com/olegiv/backmon-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "BackMon - Backup Event Monitor\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BACKMON_API_KEY               Shared agent API key (required, min 16 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BACKMON_DB_PATH               SQLite database path (default: ./data/backmon.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BACKMON_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BACKMON_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BACKMON_RETENTION_DAYS        Age-based event pruning, 0 disables (default: 0)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BACKMON_ALERT_WEBHOOK_URL     Webhook notified on Error events (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BACKMON_ALERT_WEBHOOK_SECRET  HMAC secret for alert signatures (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("backmon %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	eventService := service.NewEventService(db)

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(templatesFS)
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Start maintenance scheduler
	sched := scheduler.New(eventService, cfg.RetentionDays, logger.With("component", "scheduler"))
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	ctx := context.Background()

	// Optional alert dispatcher for Error events
	var dispatcher *webhook.Dispatcher
	if cfg.AlertsEnabled() {
		dispatcher = webhook.NewDispatcher(
			webhook.DefaultConfig(cfg.AlertWebhookURL, cfg.AlertWebhookSecret),
			logger.With("component", "webhook"),
		)
		dispatcher.Start(ctx)
		defer dispatcher.Stop()
	}

	// Initialize handlers
	eventsHandler := handler.NewEventsHandler(eventService, logger.With("component", "events"))
	if dispatcher != nil {
		eventsHandler.SetDispatcher(dispatcher)
	}
	dashboardHandler := handler.NewDashboardHandler(eventService, renderer)
	healthHandler := handler.NewHealthHandler(db, appVersion)

	// Ingest rate limiter: generous for real agents, a lid on runaways.
	ingestLimiter := middleware.NewRateLimiter(10.0, 30)

	apiKeyAuth := middleware.APIKeyAuth(cfg.APIKey)

	// Create router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))

	// Health check routes (public)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Dashboard (public in the reference deployment)
	r.Get("/", dashboardHandler.Home)

	// Authenticated API routes
	r.Group(func(r chi.Router) {
		r.Use(apiKeyAuth)
		r.With(ingestLimiter.Middleware()).Post("/event", eventsHandler.Ingest)
		r.With(ingestLimiter.Middleware()).Post("/evento", eventsHandler.Ingest) // legacy agent path
		r.Get("/status", eventsHandler.Status)
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

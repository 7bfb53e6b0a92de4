package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/annex"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/database"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/logging"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/routes"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.SessionSecret == "" {
		slog.Error("SESSION_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Stdout (optionally teed to a rotating file) plus PostgreSQL (ERROR+ async batch)
	logOut, logFile := logging.Output(cfg)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(logOut),
		pgLogHandler,
	)))

	// Log and session cleanup
	cleanup, err := logging.StartCleanup(db, cfg.CleanupSchedule, cfg.LogRetention)
	if err != nil {
		slog.Error("cleanup scheduler failed", "error", err)
		os.Exit(1)
	}

	// Document annex; runs disabled when Redis is unreachable
	docs := annex.Connect(context.Background(), cfg)

	// Services
	authService := services.NewAuthService(db, cfg)
	catalogService := services.NewCatalogService(db)
	purchaseService := services.NewPurchaseService(db)
	reviewService := services.NewReviewService(db, purchaseService, services.NewContentFilter())
	adminService := services.NewAdminService(db)
	annexService := services.NewAnnexService(docs, catalogService)

	if n, err := authService.PromoteBootstrapAdmins(); err != nil {
		slog.Error("admin bootstrap failed", "error", err)
	} else if n > 0 {
		slog.Info("bootstrap admins promoted", "count", n)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	healthHandler := handlers.NewHealthHandler(db, annexService)
	gameHandler := handlers.NewGameHandler(catalogService, annexService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	if cfg.MetricsEnabled {
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}

	routes.Setup(app, cfg, authService, authHandler, healthHandler, gameHandler, purchaseHandler, reviewHandler, adminHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "annex", docs.Available())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	<-cleanup.Stop().Done()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := docs.Close(); err != nil {
		slog.Error("annex close error", "error", err)
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
	_ = logFile.Close()
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medstock/docs"
	"medstock/internal/auth"
	"medstock/internal/config"
	"medstock/internal/database"
	"medstock/internal/database/migration"
	handlers "medstock/internal/http/handler"
	"medstock/internal/http/middleware"
	"medstock/internal/logging"
	"medstock/internal/metrics"
	"medstock/internal/otel"
	"medstock/internal/repository/postgres"
	"medstock/internal/scheduler"
	"medstock/internal/service"
	"medstock/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Medstock API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()
	logger := logging.Init(loc)

	if err := run(cfg, loc, logger); err != nil {
		logger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, loc *time.Location, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logging.Component("tracing"))
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err.Error())
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, logging.Component("migration"), cfg.Database.Host); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	// Month-close archiving is optional; a nil store disables it
	var store storage.Storage
	if cfg.MinIO.Enabled() {
		store, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			return err
		}
	} else {
		logger.Info("object storage not configured, month-close archive disabled")
	}

	// Initialize repositories and services
	tokenRepo := postgres.NewTokenPostgres(db)
	authSvc := service.NewAuthService(postgres.NewUserPostgres(db), tokenRepo, tokens, m, logging.Component("auth"))
	reportSvc := service.NewReportService(postgres.NewReportPostgres(db), store, m, logging.Component("month_close"), loc)
	svc := handlers.Services{
		Auth:         authSvc,
		Medicines:    service.NewMedicineService(postgres.NewMedicinePostgres(db)),
		Transactions: service.NewTransactionService(postgres.NewTransactionPostgres(db), m, loc),
		Reports:      reportSvc,
	}

	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminName); err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.Auth.LoginRatePerSec, cfg.Auth.LoginBurst, m)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(loc))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, svc, limiter.Handler())

	jobs := scheduler.New(cfg.Scheduler, loc, reportSvc, authSvc, limiter, logging.Component("scheduler"))
	if err := jobs.Start(); err != nil {
		return err
	}
	defer jobs.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	logger.Info("server started", "port", cfg.Port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

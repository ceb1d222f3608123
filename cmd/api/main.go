// Package main is the entrypoint for the Reelstore REST API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/reelstore/reelstore/internal/cache"
	"github.com/reelstore/reelstore/internal/config"
	"github.com/reelstore/reelstore/internal/events"
	"github.com/reelstore/reelstore/internal/handler"
	"github.com/reelstore/reelstore/internal/logging"
	"github.com/reelstore/reelstore/internal/metrics"
	"github.com/reelstore/reelstore/internal/middleware"
	"github.com/reelstore/reelstore/internal/migrate"
	"github.com/reelstore/reelstore/internal/repository"
	"github.com/reelstore/reelstore/internal/server"
	"github.com/reelstore/reelstore/internal/service"
	"github.com/reelstore/reelstore/migrations"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if cfg.MigrateOnStart {
		if err := runMigrations(ctx, cfg.DatabaseURL, logger); err != nil {
			logger.Error("failed to migrate database", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	recorder := metrics.NewInMemory()

	var publisher service.EventPublisher
	var eventsPublisher *events.Publisher
	if cfg.EventsEnabled {
		eventsPublisher = events.NewPublisher(cacheClient.Client(), logger, recorder)
		publisher = eventsPublisher
	}

	catalogService := service.NewCatalogService(repo, cacheClient, cfg.CacheTTL, logger, recorder)
	customerService := service.NewCustomerService(repo, publisher, logger, recorder)
	rentalService := service.NewRentalService(repo, cacheClient, publisher, logger, recorder)

	r := setupRouter(routerDeps{
		catalog:   handler.NewCatalogHandler(catalogService, logger),
		customers: handler.NewCustomerHandler(customerService, logger),
		rentals:   handler.NewRentalHandler(rentalService, logger),
		health: handler.NewHealthHandler(
			handler.Dependency{Name: "postgres", Checker: repo},
			handler.Dependency{Name: "redis", Checker: cacheClient},
		),
		metrics:     handler.NewMetricsHandler(recorder),
		rateChecker: cacheClient,
	}, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	if eventsPublisher != nil {
		srv.OnShutdown("events publisher", eventsPublisher.Wait)
	}

	logger.Info("starting api server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"events_enabled", cfg.EventsEnabled,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runMigrations(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	db, err := migrate.Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := migrate.New(db, migrations.FS, logger).Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("database migrated", "applied", applied)
	return nil
}

type routerDeps struct {
	catalog     *handler.CatalogHandler
	customers   *handler.CustomerHandler
	rentals     *handler.RentalHandler
	health      *handler.HealthHandler
	metrics     *handler.MetricsHandler
	rateChecker middleware.ClientRateChecker
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps, cfg *config.Config, logger *slog.Logger) http.Handler {
	h := handler.New()
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metrics.Metrics)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(corsCfg))
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Logger:  logger,
			Checker: deps.rateChecker,
			Enabled: cfg.RateLimitEnabled,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		}))

		handler.RegisterRoutes(r, deps.catalog, deps.customers, deps.rentals)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}

// Package main is the entrypoint for the Reelstore browser front.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/reelstore/reelstore/internal/apiclient"
	"github.com/reelstore/reelstore/internal/config"
	"github.com/reelstore/reelstore/internal/handler"
	"github.com/reelstore/reelstore/internal/logging"
	"github.com/reelstore/reelstore/internal/middleware"
	"github.com/reelstore/reelstore/internal/server"
	"github.com/reelstore/reelstore/internal/web"
)

// maxFormSize bounds page form posts.
const maxFormSize = 64 << 10

func main() {
	cfg, err := config.LoadWeb()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, logger)

	site, err := web.New(client, cfg.CustomersPerPage, logger)
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	health := handler.NewHealthHandler(handler.Dependency{Name: "api", Checker: client})
	r := setupRouter(site, health, cfg, logger)

	srv := server.New(
		r,
		cfg.WebPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting web server",
		"port", cfg.WebPort,
		"env", cfg.AppEnv,
		"api_base_url", cfg.APIBaseURL,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// setupRouter configures the chi router with the page routes and middleware.
func setupRouter(site *web.Server, health *handler.HealthHandler, cfg *config.WebConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestIDWithTrace)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:         cfg.IsDevelopment(),
		ContentSecurityPolicy: middleware.PageContentSecurityPolicy,
	}))
	r.Use(middleware.MaxBodySize(maxFormSize))

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	site.RegisterRoutes(r)
	r.NotFound(site.NotFound)

	return r
}

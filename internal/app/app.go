// Package app wires configuration, logging, services, and the HTTP router
// into a runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"trendtracker/internal/config"
	"trendtracker/internal/infrastructure"
	"trendtracker/internal/loader"
	custommiddleware "trendtracker/internal/middleware"
	"trendtracker/internal/services"
	transporthttp "trendtracker/internal/transport/http"
)

// Version is stamped by the build; "dev" otherwise.
var Version = "dev"

// Application holds the wired components of the dashboard server.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	Router chi.Router
	Server *http.Server

	dashboard *services.DashboardService
	health    *services.HealthService
	registry  *prometheus.Registry
}

// New builds the application from the configuration at configPath. The
// dataset referenced by the configuration is loaded eagerly so a bad file
// fails startup rather than the first request.
func New(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		dashboard: services.NewDashboardService(logger),
		registry:  prometheus.NewRegistry(),
	}
	a.health = services.NewHealthService(Version, a.dashboard)

	csvLoader := loader.New(logger)
	if err := a.dashboard.LoadFromFile(ctx, csvLoader, cfg.Data.File); err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", cfg.Data.File, err)
	}

	a.setupRouter()
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return a, nil
}

// setupRouter builds the middleware chain and mounts all handlers.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.StructuredLogger(a.Logger))
	r.Use(custommiddleware.Recoverer(a.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.NewRequestMetrics(a.registry).Handler)
	if a.Config.Server.RateLimit.Enabled {
		r.Use(custommiddleware.RateLimit(a.Config.Server.RateLimit.RPS, a.Config.Server.RateLimit.Burst))
	}
	r.Use(chimiddleware.Timeout(a.Config.Server.WriteTimeout))

	r.Route("/api", func(r chi.Router) {
		transporthttp.NewDashboardHandler(a.dashboard, a.Logger).RegisterRoutes(r)
		transporthttp.NewExportHandler(a.dashboard, a.Logger).RegisterRoutes(r)
		transporthttp.NewHealthHandler(a.health).RegisterRoutes(r)
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.Router = r
}

// Run starts the HTTP server and blocks until the context is cancelled, an
// interrupt arrives, or the server fails. Shutdown is graceful within the
// configured timeout.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "server starting",
			slog.String("addr", a.Server.Addr),
			slog.String("version", Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("shutting down",
			slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.Logger.Info("server stopped")
	return err
}

// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/modelexplorer/internal/api"
	"github.com/starford/modelexplorer/internal/checksum"
	"github.com/starford/modelexplorer/internal/compose"
	"github.com/starford/modelexplorer/internal/fragment"
	"github.com/starford/modelexplorer/internal/mcpserver"
	"github.com/starford/modelexplorer/internal/model"
	"github.com/starford/modelexplorer/internal/render"
	"github.com/starford/modelexplorer/internal/rendercache"
	"github.com/starford/modelexplorer/internal/reports"
	"github.com/starford/modelexplorer/internal/reportservice"
	"github.com/starford/modelexplorer/internal/sse"
	"github.com/starford/modelexplorer/internal/storage"
)

var errConfigRequired = errors.New("config is required")

// components are the collaborators shared by the HTTP and MCP front ends.
type components struct {
	model   *model.Model
	catalog *reports.Catalog
	cache   *rendercache.Cache
	service *reportservice.Service
}

func (c *components) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// build loads the model and the template catalog and opens the render cache.
func build(cfg *Config, logger *slog.Logger) (*components, error) {
	modelData, err := os.ReadFile(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	m, err := model.Parse(modelData)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	logger.Info("Model loaded",
		slog.String("name", m.Info().Name),
		slog.Int("elements", m.Len()))

	store, err := storage.NewFS(cfg.Templates.Path)
	if err != nil {
		return nil, fmt.Errorf("init template storage: %w", err)
	}

	// Stored renders depend on the model too, so it is part of the engine version.
	engineVersion := checksum.Fields(render.EngineVersion, checksum.Sum(modelData))
	catalog := reports.New(store, m, engineVersion, logger)
	if _, err := catalog.Load(); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	version, _ := catalog.RenderEnvironmentVersion()
	logger.Info("Templates loaded",
		slog.Int("categories", len(catalog.Categories())),
		slog.String("render_environment", version))

	cache, err := rendercache.Open(cfg.Cache.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("init render cache: %w", err)
	}

	svc := reportservice.NewService(catalog, m, render.NewEngine(m), cache, logger)
	svc.EnvironmentChanged(version)

	return &components{model: m, catalog: catalog, cache: cache, service: svc}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("model_path", cfg.Model.Path),
		slog.String("templates_path", cfg.Templates.Path),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	// SSE broker.
	broker := sse.NewBroker(time.Second)
	defer broker.Close()

	renderer := fragment.NewRenderer(c.catalog, c.model, fragment.Options{
		ShowUUIDs: cfg.UI.ShowUUIDs,
		Version:   app.version,
	})
	composer := compose.New(renderer, c.service, logger)
	handler := api.NewHandler(composer, c.catalog, c.model, logger)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !c.catalog.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/", api.NewRouter(handler, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Template watcher: a new render environment prunes the cache and tells
	// connected pages to reload their content.
	if cfg.Templates.Watch {
		g.Go(func() error {
			return c.catalog.Watch(gCtx, cfg.Templates.Debounce, func(version string) {
				c.service.EnvironmentChanged(version)
				broker.PublishEnvironment(version)
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE streams only end when the broker closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, app.config.App.LogLevel)
	slog.SetDefault(logger)

	c, err := build(app.config, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("Starting MCP server on stdio")
	return mcpserver.New(c.service, app.version).ServeStdio()
}

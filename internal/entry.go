// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/lifeos-dev/lifeos/internal/api"
	"github.com/lifeos-dev/lifeos/internal/noteservice"
	"github.com/lifeos-dev/lifeos/internal/sse"
	"github.com/lifeos-dev/lifeos/internal/vault"
	"github.com/lifeos-dev/lifeos/internal/watch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_mode", cfg.Vault.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Build the storage backend. The adapter choice is final for this run.
	backend, err := vault.New(ctx, vault.Options{
		Mode:        vault.Mode(cfg.Vault.Mode),
		ConfigPath:  cfg.Vault.ConfigPath,
		HostCommand: cfg.Vault.HostCmd,
		HostArgs:    cfg.Vault.HostArgs,
		GrantDB:     cfg.Vault.GrantDB,
	})
	if err != nil {
		return fmt.Errorf("init vault backend: %w", err)
	}

	// A configured path pre-selects the vault root.
	if cfg.Vault.Path != "" {
		if err := backend.SetVaultPath(ctx, cfg.Vault.Path); err != nil {
			return fmt.Errorf("select vault: %w", err)
		}
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build note service and API router.
	svc := noteservice.NewService(backend)
	apiRouter := api.NewRouter(svc, backend, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start the file watcher when the backend exposes a real directory.
	// The remote adapter has no local root to observe.
	if cfg.Vault.Mode != string(vault.ModeRemote) {
		if root, err := backend.VaultPath(gCtx); err == nil && root != "" {
			g.Go(func() error {
				if err := watch.Watch(gCtx, root, logger, broker.PublishNoteEvent); err != nil {
					logger.Warn("watcher failed", slog.String("error", err.Error()))
				}
				return nil
			})
		} else {
			logger.Info("no vault selected yet, watcher not started")
		}
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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

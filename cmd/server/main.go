package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/tabview/internal/config"
	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/logging"
	"github.com/JonMunkholm/tabview/internal/sqlsource"
	"github.com/JonMunkholm/tabview/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := config.LoadEnvFiles(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"filter_mode", cfg.Parse.FilterMode,
		"csv_grammar", cfg.Parse.CSVGrammar,
		"sort_delay", cfg.Session.SortDelay,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"import_enabled", cfg.Database.Enabled(),
	)
	slog.Debug("effective configuration", "config", cfg.String())

	// Table import is optional; without DATABASE_URL the viewer runs on
	// files and pastes alone.
	var source *sqlsource.Source
	if cfg.Database.Enabled() {
		source, err = sqlsource.Open(context.Background(), sqlsource.Config{
			URL:          cfg.Database.URL,
			MaxConns:     cfg.Database.MaxConns,
			QueryTimeout: cfg.Database.QueryTimeout,
			RowLimit:     cfg.Database.ImportRowLimit,
		})
		if err != nil {
			slog.Error("failed to connect to database", "url", sqlsource.SanitizeDSN(cfg.Database.URL), "error", err)
			os.Exit(1)
		}
		defer source.Close()
		slog.Info("connected to database", "engine", string(source.Engine()))
	}

	service := core.NewService(core.ServiceConfig{
		FilterMode:    cfg.FilterMode(),
		Grammar:       cfg.Grammar(),
		SortDelay:     cfg.Session.SortDelay,
		IdleTimeout:   cfg.Session.IdleTimeout,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
	})

	server := web.NewServer(service, source, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartJanitor(jobCtx, cfg.Session.SweepInterval)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let loads in flight finish decoding.
		limiter := service.Limiter()
		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for loads to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("loads did not complete in time", "error", err)
			} else {
				slog.Info("all loads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		service.Shutdown()
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		cancelJobs()
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}

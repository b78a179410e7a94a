package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/sheetmap/internal/config"
	"github.com/JonMunkholm/sheetmap/internal/core"
	_ "github.com/JonMunkholm/sheetmap/internal/core/forms" // Register all forms
	"github.com/JonMunkholm/sheetmap/internal/logging"
	"github.com/JonMunkholm/sheetmap/internal/store"
	"github.com/JonMunkholm/sheetmap/internal/web"
	"github.com/JonMunkholm/sheetmap/internal/workbook"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
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
		"database", cfg.Database.Enabled(),
		"job_max_concurrent", cfg.Job.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to open column source", "error", err)
		os.Exit(1)
	}
	defer closeSource()

	service := core.NewService(core.ServiceConfig{
		Decode: workbook.Options{
			CSVSheetName:  cfg.Import.CSVSheetName,
			LegacyCharset: cfg.Import.LegacyCharset,
		},
		MaxFileSize: cfg.Import.MaxFileSize,
		Writer: workbook.XLSXWriter{
			SheetName:      cfg.Export.SheetName,
			HighlightColor: cfg.Export.HighlightColor,
		},
		MaxConcurrent: cfg.Job.MaxConcurrent,
		MaxWait:       cfg.Job.MaxWaitTime,
	}, source)

	slog.Info("forms registered",
		"count", core.FormCount(),
		"groups", len(core.Groups()),
	)
	for _, group := range core.Groups() {
		slog.Debug("form group", "group", group, "forms", len(core.ByGroup(group)))
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting requests first, then let running jobs finish.
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for jobs to complete", "active", status.Active)
			if err := service.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("jobs did not complete in time", "error", err)
			} else {
				slog.Info("all jobs completed")
			}
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openSource connects the code-table database when one is configured and
// falls back to the YAML forms file otherwise. Without either, exports that
// need data-driven columns fail with an unknown-form error.
func openSource(ctx context.Context, cfg *config.Config) (core.ColumnSource, func(), error) {
	if !cfg.Database.Enabled() {
		if cfg.Export.FormsFile == "" {
			slog.Warn("no database or forms file configured; order forms are unavailable")
			s, err := store.ParseYAML(nil)
			return s, func() {}, err
		}
		s, err := store.LoadYAML(cfg.Export.FormsFile)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("loaded forms file", "path", cfg.Export.FormsFile, "order_forms", len(s.OrderFormIDs()))
		return s, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return store.NewPGStore(pool), pool.Close, nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/acadflow/acadflow/internal/config"
	"github.com/acadflow/acadflow/internal/core"
	"github.com/acadflow/acadflow/internal/logging"
	"github.com/acadflow/acadflow/internal/presets"
	"github.com/acadflow/acadflow/internal/store"
	"github.com/acadflow/acadflow/internal/web"
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
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	if err := loadPresets(cfg.Presets.File); err != nil {
		slog.Error("failed to load presets", "file", cfg.Presets.File, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, closeStore, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	service, err := core.NewService(st, core.Options{
		Locale:               cfg.Locale.Tabular(),
		PageSize:             cfg.Grid.PageSize,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		ImportWait:           cfg.Import.MaxWaitTime,
		ImportTimeout:        cfg.Import.Timeout,
		AuditCapacity:        cfg.Journal.Capacity,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	for _, p := range service.Presets() {
		slog.Debug("preset registered", "kind", p.Kind, "group", p.Group, "columns", len(p.Columns))
	}
	slog.Info("presets registered", "count", len(service.Presets()))

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())

	go service.StartRetention(jobCtx, core.RetentionConfig{
		MaxAge:        cfg.Journal.MaxAge,
		CheckInterval: cfg.Journal.CheckInterval,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active imports to complete (with timeout)
		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// loadPresets registers the presets of an optional YAML file next to the
// built-in ones.
func loadPresets(path string) error {
	if path == "" {
		return nil
	}
	loaded, err := presets.LoadFile(path)
	if err != nil {
		return err
	}
	slog.Info("presets file loaded", "file", path, "count", len(loaded))
	return nil
}

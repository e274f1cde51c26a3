package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/acadflow/acadflow/internal/config"
	"github.com/acadflow/acadflow/internal/core"
	"github.com/acadflow/acadflow/internal/logging"
	"github.com/acadflow/acadflow/internal/presets"
	"github.com/acadflow/acadflow/internal/store"
)

type rootOptions struct {
	envFile     string
	presetsFile string
	memory      bool
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	cfg     *config.Config
	service *core.Service
	close   func()
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	a := &app{close: func() {}}

	cmd := &cobra.Command{
		Use:           "acadflow",
		Short:         "Import and export academic records as CSV or Excel files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "dotenv file loaded before the environment is read")
	cmd.PersistentFlags().StringVar(&opts.presetsFile, "presets", "", "YAML file declaring extra presets (overrides PRESETS_FILE)")
	cmd.PersistentFlags().BoolVar(&opts.memory, "memory", false, "use an in-memory store even when DATABASE_URL is set")

	cmd.AddCommand(
		newPresetsCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newTemplateCmd(a),
		newConvertCmd(a),
	)
	return cmd
}

// open loads the environment and configuration, then builds the service.
func (a *app) open(cmd *cobra.Command, opts rootOptions) error {
	if opts.envFile != "" {
		if err := godotenv.Overload(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Logs go to stderr so that stdout stays parseable.
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))

	file := cfg.Presets.File
	if opts.presetsFile != "" {
		file = opts.presetsFile
	}
	if file != "" {
		if _, err := presets.LoadFile(file); err != nil {
			return err
		}
	}

	dbCfg := cfg.Database
	if opts.memory {
		dbCfg.URL = ""
	}
	st, closeStore, err := store.Open(cmd.Context(), dbCfg)
	if err != nil {
		return err
	}
	a.close = closeStore

	a.service, err = core.NewService(st, core.Options{
		Locale:               cfg.Locale.Tabular(),
		PageSize:             cfg.Grid.PageSize,
		MaxConcurrentImports: cfg.Import.MaxConcurrent,
		ImportWait:           cfg.Import.MaxWaitTime,
		ImportTimeout:        cfg.Import.Timeout,
		AuditCapacity:        cfg.Journal.Capacity,
	})
	if err != nil {
		closeStore()
		return err
	}
	return nil
}

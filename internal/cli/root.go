// Package cli wires the envirowatch commands: the API server, schema
// migrations, demo data, retention purge and the alert worker.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/config"
	"github.com/iliyamo/envirowatch/internal/database"
	"github.com/iliyamo/envirowatch/internal/logger"
)

// configPath is the --config value shared by every subcommand.
var configPath string

// NewRootCommand returns the envirowatch command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "envirowatch",
		Short:         "Environmental monitoring API with a rule-based assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (defaults to $CONFIG_FILE)")

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedCommand(),
		newPurgeCommand(),
		newWorkerCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "envirowatch:", err)
		os.Exit(1)
	}
}

// app is what every command needs before doing real work.
type app struct {
	cfg config.Config
	log *zap.Logger
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log.With(zap.String("env", cfg.Env))}, nil
}

func (rt *app) openDB(ctx context.Context) (*sqlx.DB, error) {
	user, pass, host, port, name := rt.cfg.DSNParams()
	db, err := database.Open(ctx, user, pass, host, port, name)
	if err != nil {
		return nil, err
	}
	rt.log.Info("database connected", zap.String("host", rt.cfg.DBHost), zap.String("name", rt.cfg.DBName))
	return db, nil
}

func (rt *app) close() { _ = rt.log.Sync() }

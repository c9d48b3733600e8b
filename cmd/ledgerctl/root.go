package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/grey-ledger/internal/config"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
	"github.com/josh-kwaku/grey-ledger/internal/repository"
)

// app holds what every subcommand shares. The database is opened on first use
// so commands like token never need one.
type app struct {
	cfg      *config.Config
	logLevel string
	db       *sql.DB
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "ledgerctl",
		Short:   "Operate the Grey ledger: migrations, chart seeding, reports and tokens",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			level := a.logLevel
			if level == "" {
				level = cfg.LogLevel
			}
			// Logs go to stderr so report output stays pipeable.
			logging.InitWriter(os.Stderr, "ledgerctl", level, "development")
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")

	rootCmd.AddCommand(
		newMigrateCommand(a),
		newSeedChartCommand(a),
		newReportCommand(a),
		newNextNumberCommand(a),
		newTokenCommand(a),
		newPurgeIdempotencyCommand(a),
	)

	return rootCmd
}

func (a *app) conn(cmd *cobra.Command) (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := repository.NewPostgresDB(cmd.Context(), a.cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     2,
		MaxIdleConns:     1,
		ConnMaxLifetimeS: a.cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: a.cfg.DBConnMaxIdleTimeS,
		ConnectTimeout:   a.cfg.DBConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	a.db = db
	return db, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"financeiro/internal/infrastructure/postgres"
	"financeiro/internal/shared/auth"
	"financeiro/internal/shared/clock"
	"financeiro/internal/shared/config"
	"financeiro/internal/shared/logger"
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin CLI - maintenance commands for the financeiro API",
	Long: `Admin CLI runs the billing maintenance jobs on demand against the
configured PostgreSQL database. Configuration is read from the same
environment variables (and .env file) as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.Setup(cfg.Log); err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

var appConfig *config.Config

func Execute() {
	log := logger.WithComponent("admin")

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("date", "", "Run as if today were this date (format: YYYY-MM-DD, default: today)")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Minute, "Timeout for the operation")
}

// openDB connects to the configured database with the command timeout
// applied to the returned context.
func openDB(cmd *cobra.Command) (context.Context, context.CancelFunc, *postgres.DB, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	db, err := postgres.New(appConfig.Database.ConnectionString(), postgres.PoolConfig{
		MaxOpenConns:    appConfig.Database.MaxOpenConns,
		MaxIdleConns:    appConfig.Database.MaxIdleConns,
		ConnMaxLifetime: appConfig.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return ctx, cancel, db, nil
}

// commandClock honors --date, falling back to the billing timezone's today
func commandClock(cmd *cobra.Command) (clock.Clock, error) {
	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		return clock.System{Location: appConfig.Billing.Location}, nil
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("invalid --date, use YYYY-MM-DD: %w", err)
	}
	return clock.Fixed{Date: t}, nil
}

func newJWT() *auth.JWT {
	return auth.NewJWT(appConfig.JWT.Secret)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"MacroPulse/internal/di"
	"MacroPulse/pkg/config"
	applogger "MacroPulse/pkg/logger"
	"MacroPulse/pkg/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "macropulse",
	Short:         "FX economic-calendar ingestion and currency overview service",
	SilenceUsage:  true,
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the overview API and run the ingestion schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
			return app.Run(ctx)
		})
	},
}

// --- run ---

var runCmd = &cobra.Command{
	Use:   "run <calendar|fx>",
	Short: "Run one ingestion pipeline once and exit",
	Long: `Run one ingestion pipeline once and exit.

Examples:
  macropulse run calendar
  macropulse run fx --config config/config.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
			if err := app.Migrate(ctx); err != nil {
				return err
			}
			rep, err := app.RunJob(ctx, args[0])
			if rep != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s ok=%t processed=%d upserted=%d skipped=%d failed=%d: %s\n",
					rep.Job, rep.OK, rep.Processed, rep.Upserted, rep.Skipped, rep.Failed, rep.Message)
			}
			return err
		})
	},
}

// --- migrate ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and seed currencies and indicators",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, app *server.App) error {
			return app.Migrate(ctx)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
	rootCmd.AddCommand(serveCmd, runCmd, migrateCmd)
}

// withApp loads config, wires the app, runs fn and releases every client.
func withApp(ctx context.Context, fn func(context.Context, *server.App) error) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Warn("close error", applogger.Error(err))
		}
	}()

	return fn(ctx, app)
}

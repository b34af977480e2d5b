package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"farmlink/internal/config"
	"farmlink/internal/infrastructure"

	"github.com/spf13/cobra"
)

var logger *slog.Logger

func main() {
	root := &cobra.Command{
		Use:           "farmlink",
		Short:         "FarmLink marketplace backend with the VendorGPT assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(askCmd())
	root.AddCommand(seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and sets up the process logger
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	logger = infrastructure.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return cfg, nil
}

func connectDB(ctx context.Context, cfg config.Config) (*infrastructure.PostgresClient, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	pg, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pg, nil
}

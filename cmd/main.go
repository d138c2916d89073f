// Package main provides the CLI entrypoint for sitemapcheck.
// It wires the check subcommand, loads configuration, and initializes logging.
package main

import (
	"context"
	"fmt"
	"os"
	"sitemapcheck/internal/config"
	"sitemapcheck/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// main sets up the root Cobra command, loads configuration and logging before
// any subcommand runs, and executes the CLI.
func main() {
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:           "sitemapcheck",
		Short:         "Check the HTTP status of every URL listed in a sitemap",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath := rootCmd.PersistentFlags().String("config", "config.yml", "Config File Path")

	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		if err := logger.Setup(loaded.Environment); err != nil {
			return fmt.Errorf("could not set up logger: %w", err)
		}
		*cfg = *loaded

		return nil
	}

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(checkCommand(cfg))

	err := rootCmd.ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1) //nolint: gocritic
	}
}

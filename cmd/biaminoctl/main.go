// Command biaminoctl runs operator tasks against the configured store:
// export and import of the whole dataset, seeding user records and
// signing every session out.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/biamino/biamino-backend/config"
	"github.com/biamino/biamino-backend/internal/bootstrap"
)

var (
	verbose bool
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "biaminoctl",
	Short: "Operator tasks for the Biamino backend",
	Long: `biaminoctl talks to the same store the API server uses, selected by
STORE_BACKEND and the usual connection settings (.env is honoured).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Operation timeout")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedUsersCmd)
	rootCmd.AddCommand(clearSessionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs: config, a logger-carrying context and
// the opened stores.
type env struct {
	cfg    *config.Config
	ctx    context.Context
	stores *bootstrap.Stores
	cancel context.CancelFunc
}

func (e *env) Close() {
	e.cancel()
	if err := e.stores.Close(); err != nil {
		zerolog.Ctx(e.ctx).Warn().Err(err).Msg("close store")
	}
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := bootstrap.NewLogger(level, "development")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	ctx = log.WithContext(ctx)

	stores, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		cancel()
		return nil, err
	}
	return &env{cfg: cfg, ctx: ctx, stores: stores, cancel: cancel}, nil
}

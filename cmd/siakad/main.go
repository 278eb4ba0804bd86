package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/Spok95/siakad/internal/config"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/logging"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "siakad",
	Short:         "Academic administration backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd, userCmd, backupCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration, a logger and, when asked
// for, an open database.
type env struct {
	cfg *config.Config
	log *logging.Log
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	lg, err := logging.Init(cfg.LogLevel, cfg.Env, version)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return &env{cfg: cfg, log: lg}, nil
}

func (e *env) close() { e.log.Closer() }

func (e *env) openDB(ctx context.Context) (*sqlx.DB, error) {
	d, err := db.Open(ctx, e.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return d, nil
}

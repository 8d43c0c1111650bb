/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command estatectl watches and edits estatesync data from a terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/suparena/estatesync"
	"github.com/suparena/estatesync/config"
	"github.com/suparena/estatesync/telemetry"
)

var (
	cfgPath     string
	envFile     string
	backendName string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "estatectl",
	Short:         "Watch and edit estatesync data",
	Long:          `estatectl streams live users, properties and settings from the configured backend and runs one-shot writes against it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file with AWS settings")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", "", "Backend to use (memory or dynamodb), overrides the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// session is everything a command needs, built from flags and config.
type session struct {
	client   *estatesync.Client
	logger   *slog.Logger
	shutdown func()
}

func openSession(ctx context.Context) (*session, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	if backendName != "" {
		if err := os.Setenv(config.EnvBackend, backendName); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	shutdown := func() {}
	if cfg.Telemetry != nil {
		shutdownTel, err := telemetry.Setup(ctx, *cfg.Telemetry)
		if err != nil {
			logger.Error("telemetry setup failed, continuing without telemetry", "error", err)
		} else {
			shutdown = func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTel(flushCtx); err != nil {
					logger.Error("telemetry shutdown error", "error", err)
				}
			}
		}
	}

	conn, err := estatesync.OpenBackend(ctx, cfg, logger)
	if err != nil {
		shutdown()
		return nil, err
	}
	client, err := estatesync.New(conn, nil,
		estatesync.WithLogger(logger),
		estatesync.WithSettingsDocument(cfg.SettingsDocument),
	)
	if err != nil {
		shutdown()
		return nil, err
	}
	return &session{client: client, logger: logger, shutdown: shutdown}, nil
}

// withSession opens a session around fn.
func withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.shutdown()
		return fn(cmd, args, s)
	}
}

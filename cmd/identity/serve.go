// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/virtuoso-music/identity/internal/auth"
	authpg "github.com/virtuoso-music/identity/internal/auth/postgres"
	"github.com/virtuoso-music/identity/internal/config"
	"github.com/virtuoso-music/identity/internal/httpapi"
	"github.com/virtuoso-music/identity/internal/logging"
	"github.com/virtuoso-music/identity/internal/observability"
	"github.com/virtuoso-music/identity/internal/store"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the identity HTTP server",
		Long: `Start the identity service: connect to PostgreSQL, optionally run
pending migrations, and serve the register, login, and profile endpoints.`,
		RunE: runServe,
	}

	defaults := config.Default()
	cmd.Flags().String("http-addr", defaults.HTTPAddr, "HTTP listen address")
	cmd.Flags().String("metrics-addr", defaults.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("token-secret", "", "session token signing secret")
	cmd.Flags().Duration("token-ttl", defaults.TokenTTL, "session token lifetime")
	cmd.Flags().String("log-format", defaults.LogFormat, "log format (json or text)")
	cmd.Flags().Bool("auto-migrate", false, "run pending migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath := cmd.Flag("config").Value.String()
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("identity", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.InfoContext(ctx, "connected to database")

	if cfg.AutoMigrate {
		if err := runAutoMigrate(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.InfoContext(ctx, "migrations applied")
	}

	hasher := auth.NewArgon2idHasher(auth.HashParams{
		Memory:  cfg.HashMemory,
		Time:    cfg.HashTime,
		Threads: cfg.HashThreads,
	})
	issuer, err := auth.NewTokenIssuer([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}
	verifier, err := auth.NewTokenVerifier([]byte(cfg.TokenSecret))
	if err != nil {
		return err
	}
	svc, err := auth.NewServiceWithLogger(authpg.NewAccountRepository(pool), hasher, issuer, logger)
	if err != nil {
		return err
	}

	api, err := httpapi.NewServer(cfg.HTTPAddr, version, svc, verifier, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.MetricsAddr != "" {
		obs := observability.NewServer(cfg.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, err := obs.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if stopErr := obs.Stop(stopCtx); stopErr != nil {
				logger.Warn("failed to stop observability server", "error", stopErr)
			}
		}()
		go func() {
			if obsErr := <-obsErrCh; obsErr != nil {
				logger.Error("observability server failed", "error", obsErr)
				cancel()
			}
		}()
		logger.InfoContext(ctx, "observability server started", "addr", obs.Addr())
	}

	return api.Run(ctx)
}

func runAutoMigrate(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck // best-effort cleanup
	}()
	return migrator.Up()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package main

import (
	"os"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/virtuoso-music/identity/internal/config"
	"github.com/virtuoso-music/identity/internal/store"
)

// NewMigrateCmd creates the migrate subcommand with its up, down, version,
// and force actions.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back, or inspect schema migrations on the PostgreSQL database.`,
	}

	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (falls back to "+config.EnvDatabaseURL+")")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					cmd.Println("migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					cmd.Println("migration rolled back")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current migration version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(m *store.Migrator) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					if dirty {
						cmd.Printf("version: %d (dirty)\n", version)
					} else {
						cmd.Printf("version: %d\n", version)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Force the migration version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return oops.Code("MIGRATION_INVALID_VERSION").
						With("version", args[0]).
						Wrap(err)
				}
				return withMigrator(cmd, func(m *store.Migrator) error {
					if err := m.Force(version); err != nil {
						return err
					}
					cmd.Printf("version forced to %d\n", version)
					return nil
				})
			},
		},
	)

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	databaseURL := cmd.Flag("database-url").Value.String()
	if databaseURL == "" {
		databaseURL = os.Getenv(config.EnvDatabaseURL)
	}
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			Errorf("database URL is required (--database-url or %s)", config.EnvDatabaseURL)
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrf("warning: closing migrator: %v\n", closeErr)
		}
	}()

	return fn(migrator)
}

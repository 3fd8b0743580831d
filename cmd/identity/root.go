// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the identity CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Virtuoso identity service",
		Long: `The Virtuoso identity service handles account registration, login,
and profile retrieval, issuing signed session tokens for the rest of
the platform to verify.`,
	}

	cmd.PersistentFlags().String("config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

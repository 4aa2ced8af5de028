// Copyright 2026 the Certmint contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/certmint/certmint/internal/plog"
)

//nolint:gochecknoglobals
var logLevel string

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "certmint",
	Short: "Mint a short-lived Kubernetes client certificate for the invoking user",
	Long: `certmint reads a PEM public key on stdin and writes a signed client certificate on stdout.
The certificate subject encodes the invoking user (from SUDO_USER) and their OS groups, and it
is signed by the cluster CA with a validity window of a few minutes.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true, // do not print usage message when the command fails
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return plog.ValidateAndSetLogLevelGlobally(plog.LogLevel(logLevel))
	},
	RunE: runMint,
}

//nolint:gochecknoinits
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level for stderr diagnostics (default, info, debug)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() and only needs to happen once.
func Execute() error {
	return rootCmd.Execute()
}

// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of pocketctl. It
// implements account registration, login, logout and session inspection
// against a PocketBase-style backend using the Cobra CLI framework, and keeps
// the session token fresh while long-running commands are active.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pocketctl/cli/internal/logging"
)

var (
	showVersion    bool
	flagURL        string
	flagCollection string
	flagVerbose    bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pocketctl",
	Short: "Session and account helper for PocketBase-style backends",
	Long: `pocketctl registers accounts, logs in with email and password, and keeps the
resulting session in the OS keychain. While a session is held it is refreshed
shortly before the token expires.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			return printVersion(cmd.Context())
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("Error", err, flagVerbose))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version and backend health")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Backend base URL (overrides config and POCKETCTL_URL)")
	rootCmd.PersistentFlags().StringVar(&flagCollection, "collection", "", "Auth collection name (default \"users\")")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

func printVersion(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	backendStatus := "unreachable"
	if h, err := a.api.Health(ctx); err == nil {
		backendStatus = fmt.Sprintf("%s (%s)", h.Message, a.cfg.BaseURL)
	} else {
		a.logger.Debug("Health check failed", a.logger.Args("error", err.Error()))
	}
	pterm.Printf("pocketctl %s\nbackend %s\n", Version, backendStatus)
	return nil
}

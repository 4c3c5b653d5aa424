// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pocketctl/cli/internal/session"
	"pocketctl/cli/internal/token"
)

var refreshForce bool

// refreshCmd runs a single refresh check.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the session token if it is close to expiry",
	Long: `The refresh command runs the same check as the background refresher: if the
stored token expires within the configured lead window it is exchanged for a
new one. --force refreshes any valid token regardless of its expiry.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		var extra []session.Option
		if refreshForce {
			extra = append(extra, session.WithPolicy(session.PolicyAlways))
		}
		a, err := newApp(extra...)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.session.Token() == "" {
			notLoggedIn()
			return nil
		}
		if !a.session.Authenticated() {
			pterm.Warning.Println("The stored session has expired or cannot be decoded.")
			pterm.Println("   Run 'pocketctl login' to start a new one.")
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout())
		defer cancel()

		var refreshed bool
		err = spin("Refreshing session", func() error {
			var err error
			refreshed, err = a.session.RefreshSession(ctx)
			return err
		})
		if err != nil {
			return a.fail("refreshing the session", err)
		}

		exp, _ := token.Expiry(a.session.Token())
		if refreshed {
			pterm.Success.Printf("Session refreshed, token now expires %s\n", humanizeUntil(time.Until(exp)))
			return nil
		}
		pterm.Info.Printf("Token expires %s; not due for refresh (lead %s)\n", humanizeUntil(time.Until(exp)), a.cfg.RefreshLead())
		return nil
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshForce, "force", false, "Refresh even when the token is not close to expiry")
	rootCmd.AddCommand(refreshCmd)
}

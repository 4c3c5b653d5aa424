// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pocketctl/cli/internal/logging"
	"pocketctl/cli/internal/session"
	"pocketctl/cli/internal/token"
)

// whoamiCmd shows the stored session without contacting the backend.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command prints the account record of the stored session together
with the token's expiry and when it will next be refreshed. It works offline;
use 'pocketctl refresh' to check the session against the backend.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		snap := a.session.Snapshot()
		if !snap.Authenticated() {
			notLoggedIn()
			return nil
		}

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Session")).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Println(describeSession(snap, a.session.Policy(), a.cfg.RefreshLead(), time.Now()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func describeSession(snap session.Snapshot, policy session.Policy, lead time.Duration, now time.Time) string {
	var b strings.Builder
	id := snap.Identity
	if id != nil {
		fmt.Fprintf(&b, "Account:    %s\n", id.DisplayName())
		fmt.Fprintf(&b, "ID:         %s\n", id.ID)
		if id.CollectionName != "" {
			fmt.Fprintf(&b, "Collection: %s\n", id.CollectionName)
		}
		fmt.Fprintf(&b, "Verified:   %t\n", id.Verified)
	}
	fmt.Fprintf(&b, "Token:      %s\n", logging.ShortToken(snap.Token))

	exp, err := token.Expiry(snap.Token)
	if err != nil {
		b.WriteString("Expires:    unknown (token cannot be decoded)")
		return b.String()
	}
	fmt.Fprintf(&b, "Expires:    %s (%s)\n", exp.Local().Format(time.DateTime), humanizeUntil(exp.Sub(now)))
	switch {
	case !now.Before(exp):
		b.WriteString("Refresh:    expired, log in again")
	case policy.Due(exp, now, lead):
		b.WriteString("Refresh:    due on the next check")
	default:
		fmt.Fprintf(&b, "Refresh:    %s", humanizeUntil(exp.Add(-lead).Sub(now)))
	}
	return b.String()
}

// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the stored session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session",
	Long: `The logout command clears the token and account record from this device,
including the copy in the OS keychain. The backend is not contacted; tokens
already issued stay valid until they expire.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		who := a.session.Identity().DisplayName()
		a.session.Logout()

		if who == "" {
			pterm.Println("✅ No session was stored; nothing to remove")
			return nil
		}
		pterm.Printf("✅ Logged out %s and removed the saved session\n", who)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

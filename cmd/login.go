// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pocketctl/cli/internal/terminal"
)

var (
	loginEmail string
	loginForce bool
)

// loginCmd authenticates with email and password and stores the session.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Log in with email and password",
	Long: `The login command authenticates against the configured auth collection with
an email and password. The issued token and account record are stored in the
OS keychain and reused by later commands until you log out.

If a valid session already exists the command does nothing unless --force is
given. The password is read without echo when stdin is a terminal, and from
the first line of stdin otherwise.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.session.Authenticated() && !loginForce {
			pterm.Printf("Already logged in as %s\n", a.session.Identity().DisplayName())
			return nil
		}

		p := terminal.NewPrompter()
		email, err := promptEmail(p, loginEmail)
		if err != nil {
			return err
		}
		password, err := p.Password("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		err = spin("Logging in", func() error {
			_, err := a.session.Login(ctx, email, password)
			return err
		})
		if err != nil {
			return a.fail("logging in", err)
		}

		pterm.Println(loginGreeting(a.session.Identity().DisplayName()))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email (prompted when empty)")
	loginCmd.Flags().BoolVar(&loginForce, "force", false, "Log in again even when a valid session exists")
	rootCmd.AddCommand(loginCmd)
}

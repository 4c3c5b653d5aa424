// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pocketctl/cli/internal/terminal"
)

var (
	registerEmail string
	registerLogin bool
)

var errPasswordMismatch = errors.New("passwords do not match")

// registerCmd creates a new account in the auth collection.
var registerCmd = &cobra.Command{
	Use:     "register",
	Aliases: []string{"signup"},
	Short:   "Create an account",
	Long: `The register command creates a record in the configured auth collection. The
current session is left untouched unless --login is given, in which case the
new account is logged in right away.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p := terminal.NewPrompter()
		email, err := promptEmail(p, registerEmail)
		if err != nil {
			return err
		}
		password, err := p.Password("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if p.Interactive() {
			confirm, err := p.Password("Confirm password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if confirm != password {
				return errPasswordMismatch
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		err = spin("Creating account", func() error {
			rec, err := a.session.Register(ctx, email, password)
			if err == nil {
				a.logger.Debug("Account created", a.logger.Args("id", rec.ID))
			}
			return err
		})
		if err != nil {
			return a.fail("creating the account", err)
		}
		pterm.Success.Printf("Account %s created\n", email)

		if !registerLogin {
			pterm.Println("   Run 'pocketctl login' to start a session.")
			return nil
		}
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
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "Account email (prompted when empty)")
	registerCmd.Flags().BoolVar(&registerLogin, "login", false, "Log in after the account is created")
	rootCmd.AddCommand(registerCmd)
}

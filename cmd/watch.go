// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"pocketctl/cli/internal/session"
)

// watchCmd keeps the session alive in the foreground.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session fresh and show its state until interrupted",
	Long: `The watch command stays in the foreground with the background refresher
running, so the stored token is renewed before it expires. The session state is
redrawn whenever it changes and once a second. Press Ctrl+C to stop; the
session itself is kept.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.session.Authenticated() {
			notLoggedIn()
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		changes := make(chan session.Snapshot, 1)
		// Only the newest snapshot matters; never block the notifier.
		unsubscribe := a.session.Subscribe(func(s session.Snapshot) {
			for {
				select {
				case changes <- s:
					return
				default:
				}
				select {
				case <-changes:
				default:
				}
			}
		})
		defer unsubscribe()

		cursor.Hide()
		defer cursor.Show()
		area, err := pterm.DefaultArea.Start()
		if err != nil {
			return err
		}
		defer func() { _ = area.Stop() }()

		render := func(snap session.Snapshot) {
			if !snap.Authenticated() {
				area.Update(pterm.Warning.Sprint("Session ended"))
				return
			}
			area.Update(describeSession(snap, a.session.Policy(), a.cfg.RefreshLead(), time.Now()) +
				"\n\n" + pterm.FgGray.Sprint("Refresh check every "+a.cfg.RefreshInterval().String()+". Ctrl+C to stop."))
		}

		snap := a.session.Snapshot()
		render(snap)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap = <-changes:
				render(snap)
				if !snap.Authenticated() {
					return nil
				}
			case <-ticker.C:
				render(snap)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

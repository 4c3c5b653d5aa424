// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"strings"

	"github.com/pterm/pterm"

	"pocketctl/cli/internal/auth"
	"pocketctl/cli/internal/backend"
	"pocketctl/cli/internal/config"
	"pocketctl/cli/internal/httperrors"
	"pocketctl/cli/internal/keychain"
	"pocketctl/cli/internal/logging"
	"pocketctl/cli/internal/session"
)

// app is what every command works with: the loaded config, a logger and a
// session manager bound to a backend client whose auth store persists in
// the OS keychain.
type app struct {
	cfg     config.Config
	logger  *pterm.Logger
	api     *backend.HTTP
	client  *backend.Client
	session *session.Manager
}

func newApp(extra ...session.Option) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if u := strings.TrimSpace(flagURL); u != "" {
		cfg.BaseURL = strings.TrimRight(u, "/")
	}
	if c := strings.TrimSpace(flagCollection); c != "" {
		cfg.Collection = c
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, flagVerbose)
	policy, err := session.ParsePolicy(cfg.Refresh.Policy)
	if err != nil {
		return nil, err
	}

	storeOpts := []auth.StoreOption{auth.WithLogger(logger)}
	if km, err := keychain.GetManager(); err != nil {
		logger.Warn("OS keychain unavailable, the session will not be kept", logger.Args("error", err.Error()))
	} else {
		storeOpts = append(storeOpts, auth.WithPersister(km))
	}
	store := auth.NewStore(storeOpts...)

	api := backend.New(cfg.BaseURL,
		backend.WithTimeout(cfg.RequestTimeout()),
		backend.WithUserAgent("pocketctl/"+Version),
		backend.WithLogger(logger),
	)
	client := backend.NewClient(api, store, cfg.Collection)

	opts := []session.Option{
		session.WithPolicy(policy),
		session.WithLead(cfg.RefreshLead()),
		session.WithInterval(cfg.RefreshInterval()),
		session.WithRefreshTimeout(cfg.RequestTimeout()),
		session.WithLogger(logger),
	}
	mgr := session.New(client, append(opts, extra...)...)

	logger.Debug("Session manager ready", logger.Args(
		"url", cfg.BaseURL,
		"collection", cfg.Collection,
		"policy", policy.String(),
		"authenticated", mgr.Authenticated(),
	))
	return &app{cfg: cfg, logger: logger, api: api, client: client, session: mgr}, nil
}

func (a *app) Close() {
	a.session.Close()
}

// fail renders err for the user and returns it for the exit status.
func (a *app) fail(action string, err error) error {
	if httperrors.IsNetwork(err) {
		return httperrors.FormatNetworkError(err, action, a.cfg.BaseURL)
	}
	logging.PresentAuthError(action, err)
	return err
}

func notLoggedIn() {
	pterm.Println("🔒 You're not logged in yet!")
	pterm.Println("   Run 'pocketctl login' to get started.")
}

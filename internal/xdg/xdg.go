// Package xdg provides helpers to resolve XDG Base Directory paths for pocketctl.
// It implements the XDG Base Directory specification for determining appropriate
// locations for configuration files and state data on Unix-like systems.
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "pocketctl"

// ConfigDir returns the XDG config directory for pocketctl.
// The directory is created with private permissions (0700) if missing.
// It falls back to ~/.config/pocketctl when XDG_CONFIG_HOME is unset.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for pocketctl.
// It falls back to ~/.local/state/pocketctl when XDG_STATE_HOME is unset.
// The file-based keyring lives here on platforms without a native keychain.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func resolve(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}

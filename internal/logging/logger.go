// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// EnvVerbose switches every logger created by New to debug level when set to "1".
const EnvVerbose = "POCKETCTL_VERBOSE"

// ParseLevel maps a config log level onto a pterm level. Unknown values yield info.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}

// New returns a structured logger writing to w at the given level.
// verbose (or POCKETCTL_VERBOSE=1) forces debug output.
func New(w io.Writer, level string, verbose bool) *pterm.Logger {
	lvl := ParseLevel(level)
	if verbose || os.Getenv(EnvVerbose) == "1" {
		lvl = pterm.LogLevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return pterm.DefaultLogger.WithLevel(lvl).WithWriter(w)
}

// Nop returns a logger that discards everything.
func Nop() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
}

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l *pterm.Logger) *pterm.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

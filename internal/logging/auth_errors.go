// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	perrors "pocketctl/cli/internal/errors"
)

// FormatAuthError formats a failed register/login/refresh in a user-friendly way.
// action is a short verb phrase such as "logging in".
func FormatAuthError(action string, err error) string {
	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("Failed while %s", action))
	builder.WriteString("\n\n")

	switch perrors.KindOf(err) {
	case perrors.KindUnauthorized:
		builder.WriteString("The server rejected the credentials.\n")
		builder.WriteString("This usually means:\n")
		builder.WriteString("  • The email or password is wrong\n")
		builder.WriteString("  • The session expired and can no longer be refreshed\n")

	case perrors.KindValidation:
		builder.WriteString("The server rejected the request.\n")
		for _, line := range fieldErrors(err) {
			builder.WriteString("  • " + line + "\n")
		}

	case perrors.KindNotFound:
		builder.WriteString("The auth collection was not found on the server.\n")
		builder.WriteString("Check the configured collection name and base URL.\n")

	case perrors.KindServer:
		builder.WriteString("The server encountered an internal error.\n")
		builder.WriteString("Please try again in a few moments.\n")

	case perrors.KindNetwork:
		builder.WriteString("The server could not be reached.\n")
		builder.WriteString("Check that the backend is running and the base URL is correct.\n")

	case perrors.KindMalformedToken:
		builder.WriteString("The stored session token could not be decoded.\n")

	default:
		builder.WriteString("An unexpected error occurred.\n")
	}

	builder.WriteString("\n")
	if perrors.KindOf(err) == perrors.KindUnauthorized || perrors.KindOf(err) == perrors.KindMalformedToken {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please run 'pocketctl login' and try again"))
	} else {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please try again"))
	}
	builder.WriteString("\n")

	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}

	return builder.String()
}

// PresentAuthError displays a formatted auth error.
func PresentAuthError(action string, err error) {
	fmt.Println()
	fmt.Println(FormatAuthError(action, err))
	fmt.Println()
}

// fieldErrors flattens backend validation details into "field: message" lines.
func fieldErrors(err error) []string {
	var e *perrors.E
	if !stderrors.As(err, &e) || len(e.Data) == 0 {
		if e != nil && e.Message != "" {
			return []string{e.Message}
		}
		return nil
	}
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		msg := fmt.Sprint(e.Data[k])
		if m, ok := e.Data[k].(map[string]any); ok {
			if s, ok := m["message"].(string); ok {
				msg = s
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", k, msg))
	}
	return lines
}

// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the structured logger, masking of secrets, and
// formatting of errors for user-friendly display.
//
// Tokens and passwords routinely travel through error messages and debug
// output; everything user-visible goes through Mask first.
package logging

import (
	"regexp"
	"strings"
)

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reJSONPass = regexp.MustCompile(`(?i)("password(?:Confirm)?"\s*:\s*")([^"]*)(")`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reJSONTok  = regexp.MustCompile(`(?i)("token"\s*:\s*")([^"]*)(")`)
	reJWT      = regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
	reURLCreds = regexp.MustCompile(`(?i)(://)([^:/@\s]+):([^@\s]+)(@)`)
)

// Mask replaces sensitive values in the input string with "*".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reJSONPass.ReplaceAllString(out, "$1***$3")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJSONTok.ReplaceAllString(out, "$1***$3")
	out = reJWT.ReplaceAllString(out, "***")
	out = reURLCreds.ReplaceAllString(out, "$1*:*$4")
	for _, k := range []string{"POCKETCTL_TOKEN", "POCKETCTL_KEYRING_PASSWORD"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}

// ShortToken returns a display form of a token: its last few characters only.
func ShortToken(tok string) string {
	if tok == "" {
		return ""
	}
	if len(tok) <= 8 {
		return "***"
	}
	return "***" + tok[len(tok)-6:]
}

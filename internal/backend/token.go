// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"encoding/json"
	"strings"

	"pocketctl/cli/internal/auth"
	perrors "pocketctl/cli/internal/errors"
)

// parseBearerToken strips a case-insensitive "Bearer " prefix.
// Values without the prefix are returned trimmed.
func parseBearerToken(value string) string {
	v := strings.TrimSpace(value)
	if len(v) > 6 && strings.EqualFold(v[:6], "bearer") && (v[6] == ' ' || v[6] == '\t') {
		return strings.TrimSpace(v[7:])
	}
	return v
}

// parseAuthResponse builds an AuthResponse from a decoded auth payload.
// It is liberal in the field names it accepts so proxies that rename
// "token" to "access_token" or "record" to "user" keep working.
func parseAuthResponse(raw map[string]any) (*AuthResponse, error) {
	tok := extractAccessToken(raw)
	if tok == "" {
		return nil, perrors.New(perrors.KindServer, "no token in auth response")
	}

	rec, err := extractRecord(raw)
	if err != nil {
		return nil, perrors.Wrap(perrors.KindServer, "decode auth record", err)
	}

	out := &AuthResponse{Token: tok, Record: rec}
	if m, ok := raw["meta"].(map[string]any); ok {
		out.Meta = m
	}
	return out, nil
}

// extractAccessToken tries the common token field names in order.
func extractAccessToken(raw map[string]any) string {
	for _, key := range []string{"token", "access_token", "accessToken"} {
		if v, ok := raw[key].(string); ok {
			if t := parseBearerToken(v); t != "" {
				return t
			}
		}
	}
	return ""
}

// extractRecord decodes the authenticated record from "record", "user" or "model".
func extractRecord(raw map[string]any) (*auth.Record, error) {
	for _, key := range []string{"record", "user", "model"} {
		v, ok := raw[key].(map[string]any)
		if !ok {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var rec auth.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, err
		}
		return &rec, nil
	}
	return nil, nil
}

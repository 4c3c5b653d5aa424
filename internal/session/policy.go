// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"fmt"
	"strings"
	"time"
)

// Policy decides whether a held, unexpired token is due for a refresh.
type Policy int

const (
	// PolicyLead refreshes once now is within the lead window of exp.
	PolicyLead Policy = iota
	// PolicyAlways refreshes on every check while a valid token is held,
	// whatever the time left before expiry.
	PolicyAlways
)

// ParsePolicy accepts "lead" and "always".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lead":
		return PolicyLead, nil
	case "always":
		return PolicyAlways, nil
	default:
		return PolicyLead, fmt.Errorf("unknown refresh policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case PolicyAlways:
		return "always"
	default:
		return "lead"
	}
}

// Due reports whether a token expiring at exp should be refreshed at now.
func (p Policy) Due(exp, now time.Time, lead time.Duration) bool {
	if p == PolicyAlways {
		return true
	}
	return !now.Before(exp.Add(-lead))
}

// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Backend failures are classified into machine-readable kinds so callers can
// branch on the category (bad credentials, validation, network) without
// parsing messages, while the original cause stays reachable via errors.Unwrap.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindValidation indicates the backend rejected the request payload (400).
	KindValidation Kind = "validation"
	// KindUnauthorized indicates missing, invalid or expired credentials (401/403).
	KindUnauthorized Kind = "unauthorized"
	// KindNotFound indicates the requested resource does not exist (404).
	KindNotFound Kind = "not_found"
	// KindServer indicates a backend-side failure (5xx).
	KindServer Kind = "server"
	// KindNetwork indicates the request never produced an HTTP response.
	KindNetwork Kind = "network"
	// KindMalformedToken indicates a token that could not be decoded.
	KindMalformedToken Kind = "malformed_token"
	// KindUnknown is used for anything else.
	KindUnknown Kind = "unknown"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	// Status is the HTTP status code, zero when no response was received.
	Status int
	// Data carries per-field validation details reported by the backend.
	Data map[string]any
	Err  error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// KindForStatus maps an HTTP status code to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == 400:
		return KindValidation
	case status == 401 || status == 403:
		return KindUnauthorized
	case status == 404:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

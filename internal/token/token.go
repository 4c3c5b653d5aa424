// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package token decodes bearer credentials issued by the backend.
//
// Tokens are JWTs carrying a numeric exp claim in Unix seconds. The client
// never holds the signing key, so decoding skips signature verification; the
// backend remains the authority on whether a token is accepted.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	perrors "pocketctl/cli/internal/errors"
)

// Claims are the fields this client reads from a token.
type Claims struct {
	jwt.RegisteredClaims
	// Type is the PocketBase token type, e.g. "auth".
	Type string `json:"type,omitempty"`
	// CollectionID identifies the auth collection that issued the token.
	CollectionID string `json:"collectionId,omitempty"`
}

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Decode parses the token without verifying its signature.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, perrors.New(perrors.KindMalformedToken, "empty token")
	}
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, perrors.Wrap(perrors.KindMalformedToken, "decode token", err)
	}
	return claims, nil
}

// Expiry returns the exp claim of raw.
// A token without exp is reported as malformed since its lifetime is unknown.
func Expiry(raw string) (time.Time, error) {
	claims, err := Decode(raw)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, perrors.New(perrors.KindMalformedToken, "token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired reports whether raw is absent, undecodable, or past its exp at now.
func IsExpired(raw string, now time.Time) bool {
	exp, err := Expiry(raw)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}

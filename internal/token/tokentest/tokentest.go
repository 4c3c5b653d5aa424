// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package tokentest mints signed tokens for tests.
package tokentest

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("pocketctl-test-signing-key")

// Mint returns an HS256 auth token for subject expiring at exp.
func Mint(subject string, exp time.Time) string {
	claims := jwt.MapClaims{
		"id":           subject,
		"type":         "auth",
		"collectionId": "_pb_users_auth_",
		"exp":          exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// MintWithoutExp returns a token that carries no exp claim.
func MintWithoutExp(subject string) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": subject}).SignedString(testKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "pocketctl/cli/internal/errors"
	"pocketctl/cli/internal/token"
	"pocketctl/cli/internal/token/tokentest"
)

func TestExpiry(t *testing.T) {
	exp := time.Unix(1_900_000_000, 0)
	got, err := token.Expiry(tokentest.Mint("u1", exp))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp), "got %v want %v", got, exp)
}

func TestDecode_ReadsPocketBaseClaims(t *testing.T) {
	claims, err := token.Decode(tokentest.Mint("u1", time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "auth", claims.Type)
	assert.Equal(t, "_pb_users_auth_", claims.CollectionID)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace", raw: "   "},
		{name: "not a jwt", raw: "T1"},
		{name: "bad base64", raw: "a.b.c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.Decode(tt.raw)
			require.Error(t, err)
			assert.True(t, perrors.Is(err, perrors.KindMalformedToken), "kind = %s", perrors.KindOf(err))
		})
	}
}

func TestExpiry_MissingExp(t *testing.T) {
	_, err := token.Expiry(tokentest.MintWithoutExp("u1"))
	require.Error(t, err)
	assert.Equal(t, perrors.KindMalformedToken, perrors.KindOf(err))
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "future", raw: tokentest.Mint("u1", now.Add(time.Minute)), want: false},
		{name: "past", raw: tokentest.Mint("u1", now.Add(-time.Minute)), want: true},
		{name: "exactly now", raw: tokentest.Mint("u1", now), want: true},
		{name: "empty", raw: "", want: true},
		{name: "garbage", raw: "garbage", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, token.IsExpired(tt.raw, now))
		})
	}
}

// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	perrors "pocketctl/cli/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"deadline", perrors.Wrap(perrors.KindNetwork, "request", context.DeadlineExceeded), CategoryTimeout},
		{"dns", perrors.Wrap(perrors.KindNetwork, "request", &net.DNSError{Err: "no such host", Name: "pb.invalid"}), CategoryDNS},
		{"refused", perrors.Wrap(perrors.KindNetwork, "request", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}), CategoryRefused},
		{"tls", perrors.Wrap(perrors.KindNetwork, "request", errors.New("tls: failed to verify certificate: x509: unknown authority")), CategoryTLS},
		{"server", &perrors.E{Kind: perrors.KindServer, Status: 502, Message: "Bad Gateway"}, CategoryServer},
		{"other", fmt.Errorf("wrapped: %w", errors.New("EOF")), CategoryGeneric},
		{"nil", nil, CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsNetwork(t *testing.T) {
	assert.True(t, IsNetwork(perrors.New(perrors.KindNetwork, "x")))
	assert.True(t, IsNetwork(perrors.New(perrors.KindServer, "x")))
	assert.False(t, IsNetwork(perrors.New(perrors.KindUnauthorized, "x")))
	assert.False(t, IsNetwork(errors.New("x")))
}

func TestFormatNetworkErrorWraps(t *testing.T) {
	base := perrors.New(perrors.KindNetwork, "connection refused")
	err := FormatNetworkError(base, "logging in", "http://127.0.0.1:8090")
	assert.ErrorIs(t, err, base)
	assert.Nil(t, FormatNetworkError(nil, "x", ""))
}

func TestExtractHostFromURL(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8090", ExtractHostFromURL("http://127.0.0.1:8090/api"))
	assert.Equal(t, "the backend", ExtractHostFromURL("::bad"))
}

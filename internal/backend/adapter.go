// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the client for a PocketBase-style REST backend.
// It defines the API contract for record creation, password authentication
// and token refresh, an HTTP implementation of it, and Client, which binds
// the API to an auth store the way the backend's own SDKs do.
package backend

import (
	"context"

	"pocketctl/cli/internal/auth"
)

// API defines backend operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	// Health checks that the backend is reachable.
	Health(ctx context.Context) (*HealthStatus, error)
	// CreateRecord creates a record in collection and returns it.
	CreateRecord(ctx context.Context, collection string, body map[string]any) (*auth.Record, error)
	// AuthWithPassword authenticates an auth collection record.
	AuthWithPassword(ctx context.Context, collection, identity, password string) (*AuthResponse, error)
	// AuthRefresh exchanges a still-valid token for a new one.
	AuthRefresh(ctx context.Context, collection, token string) (*AuthResponse, error)
}

// AuthResponse is returned by the auth endpoints.
type AuthResponse struct {
	Token  string         `json:"token"`
	Record *auth.Record   `json:"record"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"time"

	"github.com/pterm/pterm"
)

// Option configures the HTTP implementation.
type Option func(*HTTP)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTP) { h.client.Timeout = d }
}

// WithHTTPClient replaces the underlying client, e.g. httptest.Server.Client().
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTP) { h.client = c }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) { h.userAgent = ua }
}

// WithLogger sets the request logger.
func WithLogger(l *pterm.Logger) Option {
	return func(h *HTTP) { h.logger = l }
}

// New creates a backend API implementation for baseURL.
// Returns HTTP client (real backend).
func New(baseURL string, opts ...Option) *HTTP {
	return newHTTP(baseURL, opts...)
}

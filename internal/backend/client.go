// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"errors"

	"pocketctl/cli/internal/auth"
)

// ErrSessionChanged is returned by AuthRefresh when the store no longer
// holds the token that was refreshed, so the result was discarded.
var ErrSessionChanged = errors.New("session changed while refreshing")

// Client binds an API to an auth store for one auth collection.
// Successful authentication writes the issued token and record into the
// store, which notifies every subscriber; Logout clears it.
type Client struct {
	api        API
	store      *auth.Store
	collection string
}

// NewClient constructs a Client. store must not be nil.
func NewClient(api API, store *auth.Store, collection string) *Client {
	if collection == "" {
		collection = "users"
	}
	return &Client{api: api, store: store, collection: collection}
}

// API returns the underlying backend API.
func (c *Client) API() API { return c.api }

// AuthStore returns the auth store the client writes to.
func (c *Client) AuthStore() *auth.Store { return c.store }

// Collection returns the auth collection name.
func (c *Client) Collection() string { return c.collection }

// CreateAccount creates a record with email and password; passwordConfirm
// repeats the password. The store is not touched.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (*auth.Record, error) {
	return c.api.CreateRecord(ctx, c.collection, map[string]any{
		"email":           email,
		"password":        password,
		"passwordConfirm": password,
	})
}

// AuthWithPassword authenticates and saves the result in the store.
func (c *Client) AuthWithPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	res, err := c.api.AuthWithPassword(ctx, c.collection, email, password)
	if err != nil {
		return nil, err
	}
	c.store.Save(res.Token, res.Record)
	return res, nil
}

// AuthRefresh renews the stored token and saves the result in the store.
// On failure the store keeps its previous state. If the store changed while
// the request was in flight (logout, another login) the result is dropped
// and ErrSessionChanged is returned.
func (c *Client) AuthRefresh(ctx context.Context) (*AuthResponse, error) {
	old := c.store.Token()
	res, err := c.api.AuthRefresh(ctx, c.collection, old)
	if err != nil {
		return nil, err
	}
	rec := res.Record
	if rec == nil {
		rec = c.store.Record()
	}
	if !c.store.Replace(old, res.Token, rec) {
		return nil, ErrSessionChanged
	}
	return res, nil
}

// Logout clears the store. It never contacts the backend.
func (c *Client) Logout() {
	c.store.Clear()
}

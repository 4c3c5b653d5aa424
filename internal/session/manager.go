// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session keeps the CLI's view of the authenticated session.
//
// A Manager wraps an auth client, forwards register, login and logout to it,
// and mirrors the token and identity from the client's auth store. While a
// token is held it refreshes the token on a fixed period once expiry is
// within the lead window, so callers never track expiry themselves.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/sync/singleflight"

	"pocketctl/cli/internal/auth"
	"pocketctl/cli/internal/backend"
	"pocketctl/cli/internal/logging"
	"pocketctl/cli/internal/token"
)

// Defaults used when the corresponding option is not given.
const (
	DefaultInterval       = 2 * time.Minute
	DefaultLead           = 5 * time.Minute
	DefaultRefreshTimeout = 30 * time.Second
)

// AuthClient is the backend client a Manager drives. *backend.Client
// satisfies it.
type AuthClient interface {
	CreateAccount(ctx context.Context, email, password string) (*auth.Record, error)
	AuthWithPassword(ctx context.Context, email, password string) (*backend.AuthResponse, error)
	AuthRefresh(ctx context.Context) (*backend.AuthResponse, error)
	Logout()
	AuthStore() *auth.Store
}

// Snapshot is the mirrored session at one point in time.
// Token is empty and Identity nil when unauthenticated.
type Snapshot struct {
	Token    string
	Identity *auth.Record
}

// Authenticated reports whether the snapshot holds a token.
func (s Snapshot) Authenticated() bool { return s.Token != "" }

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy selects how a held token is judged due for refresh.
func WithPolicy(p Policy) Option { return func(m *Manager) { m.policy = p } }

// WithLead sets the window before expiry in which PolicyLead refreshes.
func WithLead(d time.Duration) Option { return func(m *Manager) { m.lead = d } }

// WithInterval sets the period of the background refresh check.
func WithInterval(d time.Duration) Option { return func(m *Manager) { m.interval = d } }

// WithRefreshTimeout bounds each background refresh attempt.
func WithRefreshTimeout(d time.Duration) Option { return func(m *Manager) { m.refreshTimeout = d } }

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// WithLogger sets the logger for background activity.
func WithLogger(l *pterm.Logger) Option { return func(m *Manager) { m.logger = l } }

func withTicker(f func(time.Duration) Ticker) Option { return func(m *Manager) { m.newTicker = f } }

// Manager mirrors the auth store of an AuthClient and keeps its token fresh.
// It is safe for concurrent use.
type Manager struct {
	client AuthClient
	store  *auth.Store

	policy         Policy
	lead           time.Duration
	interval       time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
	logger         *pterm.Logger
	newTicker      func(time.Duration) Ticker

	mu       sync.RWMutex
	token    string
	identity *auth.Record
	subs     map[uint64]func(Snapshot)
	nextID   uint64
	closed   bool
	flights  map[string]context.CancelFunc

	group       singleflight.Group
	refresher   *refresher
	unsubscribe func()
	closeOnce   sync.Once
}

// New attaches a Manager to client's auth store. If the store already
// holds a token (restored from the keychain, say) the refresher starts
// immediately. Call Close to detach.
func New(client AuthClient, opts ...Option) *Manager {
	m := &Manager{
		client:         client,
		store:          client.AuthStore(),
		policy:         PolicyLead,
		lead:           DefaultLead,
		interval:       DefaultInterval,
		refreshTimeout: DefaultRefreshTimeout,
		now:            time.Now,
		subs:           make(map[uint64]func(Snapshot)),
		flights:        make(map[string]context.CancelFunc),
	}
	for _, o := range opts {
		o(m)
	}
	m.logger = logging.OrNop(m.logger)
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	m.refresher = newRefresher(m.interval, m.newTicker, m.tick)

	m.unsubscribe = m.store.OnChange(m.onAuthChange)
	m.onAuthChange(m.store.Token(), m.store.Record())
	return m
}

// Register creates an account. The session is not changed.
func (m *Manager) Register(ctx context.Context, email, password string) (*auth.Record, error) {
	return m.client.CreateAccount(ctx, email, password)
}

// Login authenticates with email and password. On success the store
// notifies the Manager, so Token and Identity are set by the time Login
// returns.
func (m *Manager) Login(ctx context.Context, email, password string) (*auth.Record, error) {
	res, err := m.client.AuthWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}

// Logout clears the session and stops the refresher. It never fails.
func (m *Manager) Logout() {
	m.client.Logout()
}

// RefreshSession renews the token when it is due and reports whether a
// refresh request succeeded.
//
// Nothing happens when no token is held, when the token has expired, or
// when its exp cannot be decoded. Concurrent callers holding the same token
// share a single in-flight request; each stops waiting when its own ctx is
// done. The request itself is cancelled once the session it refreshes is
// replaced or cleared, and its result is then reported as not refreshed.
// Errors from the client are returned as is.
func (m *Manager) RefreshSession(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	tok := m.store.Token()
	if tok == "" {
		return false, nil
	}
	exp, err := token.Expiry(tok)
	if err != nil {
		m.logger.Warn("Held token cannot be decoded, skipping refresh", m.logger.Args("error", err.Error()))
		return false, nil
	}
	now := m.now()
	if !now.Before(exp) {
		m.logger.Debug("Held token has expired, skipping refresh", m.logger.Args("expired", exp.Format(time.RFC3339)))
		return false, nil
	}
	if !m.policy.Due(exp, now, m.lead) {
		m.logger.Trace("Token not due for refresh", m.logger.Args("expires_in", exp.Sub(now).Round(time.Second).String()))
		return false, nil
	}

	ch := m.group.DoChan(tok, func() (any, error) {
		return m.refreshFlight(ctx, tok)
	})
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-ch:
		if r.Shared {
			m.logger.Debug("Joined in-flight token refresh")
		}
		if errors.Is(r.Err, backend.ErrSessionChanged) {
			m.logger.Debug("Session changed during refresh, result discarded")
			return false, nil
		}
		if r.Err != nil {
			return false, r.Err
		}
		return true, nil
	}
}

// refreshFlight performs the request shared by every caller holding tok.
// It runs on a context of its own so one caller giving up does not fail
// the others; onAuthChange and Close cancel it.
func (m *Manager) refreshFlight(parent context.Context, tok string) (any, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), m.refreshTimeout)
	defer cancel()

	m.mu.Lock()
	if m.closed || m.token != tok {
		m.mu.Unlock()
		return nil, backend.ErrSessionChanged
	}
	m.flights[tok] = cancel
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.flights, tok)
		m.mu.Unlock()
	}()

	res, err := m.client.AuthRefresh(ctx)
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return nil, backend.ErrSessionChanged
	}
	return res, err
}

// Token returns the mirrored token, empty when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Identity returns a copy of the mirrored record, nil when unauthenticated.
func (m *Manager) Identity() *auth.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity.Clone()
}

// Snapshot returns the mirrored token and identity together.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{Token: m.token, Identity: m.identity.Clone()}
}

// Authenticated reports whether a token is held and has not expired.
func (m *Manager) Authenticated() bool {
	tok := m.Token()
	return tok != "" && !token.IsExpired(tok, m.now())
}

// Client returns the underlying auth client.
func (m *Manager) Client() AuthClient { return m.client }

// Policy returns the refresh policy in use.
func (m *Manager) Policy() Policy { return m.policy }

// Scheduled reports whether the background refresher is running.
func (m *Manager) Scheduled() bool { return m.refresher.Running() }

// Subscribe calls fn with every subsequent snapshot, in order, and returns
// a function that stops delivery. fn must not call Login or Logout
// synchronously. The returned function is safe to call more than once.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

// Close detaches from the auth store, stops the refresher, cancels any
// refresh request in flight and waits for the refresher to exit. The
// session itself is left intact.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.refresher.Stop()
		for _, cancel := range m.flights {
			cancel()
		}
		m.mu.Unlock()

		m.unsubscribe()
		m.refresher.Wait()
	})
}

// onAuthChange runs inside the store's notification and therefore must not
// block on the refresher goroutine.
func (m *Manager) onAuthChange(tok string, rec *auth.Record) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.token = tok
	m.identity = rec.Clone()
	for held, cancel := range m.flights {
		if held != tok {
			cancel()
		}
	}
	if tok != "" {
		if m.refresher.Start() {
			m.logger.Debug("Session refresher started", m.logger.Args("interval", m.interval.String(), "policy", m.policy.String()))
		}
	} else if m.refresher.Stop() {
		m.logger.Debug("Session refresher stopped")
	}
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(Snapshot{Token: tok, Identity: rec.Clone()})
	}
}

func (m *Manager) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
	defer cancel()

	refreshed, err := m.RefreshSession(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		m.logger.Debug("Token refresh interrupted", m.logger.Args("error", logging.Mask(err.Error())))
	case err != nil:
		m.logger.Warn("Token refresh failed", m.logger.Args("error", logging.Mask(err.Error())))
	case refreshed:
		m.logger.Info("Session token refreshed", m.logger.Args("token", logging.ShortToken(m.Token())))
	}
}

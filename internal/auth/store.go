// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth holds the client-side auth store: the token and authenticated
// record issued by the backend, their validity, and change notifications.
//
// The store is the single source of truth for the session. Backend calls
// that authenticate write into it, logout clears it, and consumers mirror it
// by subscribing with OnChange. When a Persister is attached the state
// survives between processes.
package auth

import (
	"sync"
	"time"

	"github.com/pterm/pterm"

	"pocketctl/cli/internal/logging"
	"pocketctl/cli/internal/token"
)

// ChangeFunc receives the new token and record after every Save or Clear.
// Both are empty/nil after a Clear.
type ChangeFunc func(token string, record *Record)

// Store is a concurrency-safe auth store.
type Store struct {
	mu     sync.RWMutex
	token  string
	record *Record

	// emitMu serializes mutations with their notifications so listeners
	// observe changes in the order they were made.
	emitMu    sync.Mutex
	listeners map[uint64]ChangeFunc
	nextID    uint64

	persister Persister
	logger    *pterm.Logger
	now       func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersister attaches durable storage; existing state is loaded by NewStore.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *pterm.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the time source used by IsValid.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store. With a persister, previously saved state is
// restored; a load failure is logged and leaves the store empty.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		listeners: make(map[uint64]ChangeFunc),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = logging.OrNop(s.logger)

	if s.persister != nil {
		st, err := Load(s.persister)
		if err != nil {
			s.logger.Warn("Could not restore saved session", s.logger.Args("error", logging.Mask(err.Error())))
		} else if st.Token != "" {
			s.token, s.record = st.Token, st.Record
			s.logger.Debug("Restored saved session", s.logger.Args("record", st.Record.DisplayName()))
		}
	}
	return s
}

// Token returns the current token, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Record returns a copy of the current record, nil when unauthenticated.
func (s *Store) Record() *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.Clone()
}

// IsValid reports whether a token is held and its exp has not passed.
func (s *Store) IsValid() bool {
	tok := s.Token()
	if tok == "" {
		return false
	}
	return !token.IsExpired(tok, s.now())
}

// Save replaces the token and record and notifies listeners.
// Listeners must not call Save or Clear synchronously.
func (s *Store) Save(tok string, record *Record) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.token = tok
	s.record = record.Clone()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.persist(tok, record)
	notify(listeners, tok, record)
}

// Replace saves tok and record only while the store still holds old, and
// reports whether it did. A refresh that completes after a logout or a new
// login therefore cannot overwrite the newer state.
func (s *Store) Replace(old, tok string, record *Record) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.token != old {
		s.mu.Unlock()
		return false
	}
	s.token = tok
	s.record = record.Clone()
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.persist(tok, record)
	notify(listeners, tok, record)
	return true
}

// Clear drops the token and record and notifies listeners.
func (s *Store) Clear() {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.token = ""
	s.record = nil
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if s.persister != nil {
		if err := Clear(s.persister); err != nil {
			s.logger.Warn("Could not remove persisted session", s.logger.Args("error", err.Error()))
		}
	}
	notify(listeners, "", nil)
}

// OnChange registers fn for every subsequent change and returns a function
// that unregisters it. The returned function is safe to call more than once.
func (s *Store) OnChange(fn ChangeFunc) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) persist(tok string, record *Record) {
	if s.persister == nil {
		return
	}
	if err := Save(s.persister, State{Token: tok, Record: record}); err != nil {
		s.logger.Warn("Could not persist session", s.logger.Args("error", logging.Mask(err.Error())))
	}
}

func (s *Store) snapshotListeners() []ChangeFunc {
	out := make([]ChangeFunc, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []ChangeFunc, tok string, record *Record) {
	for _, fn := range listeners {
		fn(tok, record.Clone())
	}
}

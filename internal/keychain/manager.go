// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for pocketctl.
// It persists the serialized auth state (token and authenticated record) in the
// OS credential store so a session survives between CLI invocations.
//
// macOS uses the security command when available and falls back to the
// keyring library; Windows uses the Credential Manager; Linux uses the
// Secret Service, KWallet or pass, with an encrypted file store when
// POCKETCTL_KEYRING_PASSWORD is set.
package keychain

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/99designs/keyring"

	"pocketctl/cli/internal/xdg"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ErrNotFound is returned by backends when a key has no stored value.
var ErrNotFound = errors.New("keychain: key not found")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "pocketctl"

// KeyAuthState is the key holding the serialized auth store.
const KeyAuthState = "auth_state"

// EnvKeyringPassword enables the encrypted file backend when set.
const EnvKeyringPassword = "POCKETCTL_KEYRING_PASSWORD"

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an already opened keyring, e.g. keyring.NewArrayKeyring in tests.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		globalManager = nil
		return nil, globalError
	}
	return globalManager, nil
}

func openRing() (keyring.Keyring, error) {
	cfg := keyring.Config{
		ServiceName:             ServiceName,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
		LibSecretCollectionName: ServiceName,
	}

	switch runtime.GOOS {
	case "darwin":
		cfg.AllowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		cfg.AllowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		}
	}

	if pw := os.Getenv(EnvKeyringPassword); pw != "" {
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, err
		}
		cfg.FileDir = filepath.Join(dir, "keyring")
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(pw)
		cfg.AllowedBackends = append(cfg.AllowedBackends, keyring.FileBackend)
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable; install 'pass' or set " + EnvKeyringPassword + " to use an encrypted file store")
		}
		return nil, err
	}
	return ring, nil
}

// SaveAuthState stores serialized auth state in the keychain.
// This method is thread-safe.
func (m *Manager) SaveAuthState(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(KeyAuthState, string(data))
	}
	return m.ring.Set(keyring.Item{Key: KeyAuthState, Data: data, Label: ServiceName + " session"})
}

// LoadAuthState retrieves serialized auth state from the keychain.
// A missing entry yields (nil, nil).
// This method is thread-safe.
func (m *Manager) LoadAuthState() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		data, err := m.backend.Get(KeyAuthState)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []byte(data), nil
	}

	it, err := m.ring.Get(KeyAuthState)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it.Data, nil
}

// ClearAuthState removes the stored auth state from the keychain.
// This method is thread-safe.
func (m *Manager) ClearAuthState() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(KeyAuthState)
	}

	if err := m.ring.Remove(KeyAuthState); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

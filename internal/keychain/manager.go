// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for flatbridge.
// It keeps the store credential of the saved connection profile in the OS
// credential store so it never lands in config.yaml.
//
// On macOS the native `security` command is used first; everywhere else the
// 99designs/keyring backends native to the platform are used.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ErrNotFound is returned when no credential has been saved.
var ErrNotFound = errors.New("no credential saved")

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
const ServiceName = "flatbridge"

// KeyCredential is the key the store credential is saved under.
const KeyCredential = "store_credential"

// NewManager creates a new keychain manager with the OS keyring initialized.
func NewManager() (*Manager, error) {
	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend()
		if err == nil {
			return &Manager{backend: backend}, nil
		}
		// Fall through to keyring library if security command fails
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring}, nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager()
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only; there is
// no file fallback.
func openRing() (keyring.Keyring, error) {
	var allowedBackends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowedBackends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowedBackends = []keyring.BackendType{keyring.WinCredBackend}
	case "linux":
		allowedBackends = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, errors.New("secure storage not supported on this OS")
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowedBackends,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. Install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// SaveCredential stores the store credential.
// This method is thread-safe.
func (m *Manager) SaveCredential(credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(KeyCredential, credential)
	}
	return m.ring.Set(keyring.Item{Key: KeyCredential, Data: []byte(credential), Label: "flatbridge store credential"})
}

// LoadCredential retrieves the store credential. It returns ErrNotFound when
// none has been saved.
// This method is thread-safe.
func (m *Manager) LoadCredential() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var value string
	if m.backend != nil {
		v, err := m.backend.Get(KeyCredential)
		if err != nil {
			return "", err
		}
		value = v
	} else {
		it, err := m.ring.Get(KeyCredential)
		if err != nil {
			if errors.Is(err, keyring.ErrKeyNotFound) {
				return "", ErrNotFound
			}
			return "", err
		}
		value = string(it.Data)
	}

	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// ClearCredential removes the store credential. Removing a missing credential
// is not an error.
// This method is thread-safe.
func (m *Manager) ClearCredential() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(KeyCredential)
	}
	if err := m.ring.Remove(KeyCredential); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

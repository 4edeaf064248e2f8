// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prefs provides the preference store used to persist the active
// theme across sessions.
package prefs

import (
	"errors"
	"sync"
)

// ThemeKey is the single key the terminal persists.
const ThemeKey = "terminalTheme"

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("preference store closed")

// Store is a string key-value store.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// =============================================================================
// PER-OWNER MEMORY STORES
// =============================================================================

// MemoryStores hands out one MemoryStore per owner, kept for the lifetime
// of the process. It mirrors SQLiteStore.Scoped for the memory backend.
type MemoryStores struct {
	mu     sync.Mutex
	owners map[string]*MemoryStore
}

// NewMemoryStores creates an empty per-owner registry.
func NewMemoryStores() *MemoryStores {
	return &MemoryStores{owners: make(map[string]*MemoryStore)}
}

// Scoped returns the store of owner, creating it on first use.
func (m *MemoryStores) Scoped(owner string) Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.owners[owner]
	if !ok {
		s = NewMemoryStore()
		m.owners[owner] = s
	}
	return s
}

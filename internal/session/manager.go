// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrTooManySessions is returned by Open when the session cap is reached.
var ErrTooManySessions = errors.New("too many active sessions")

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Config holds configuration for the session manager.
type Config struct {
	// MaxSessions caps concurrently open sessions (0 = unlimited)
	MaxSessions int

	// IdleTimeout expires sessions without activity (default: 30 minutes)
	IdleTimeout time.Duration
}

// DefaultConfig returns the default session manager configuration.
func DefaultConfig() Config {
	return Config{
		MaxSessions: 256,
		IdleTimeout: 30 * time.Minute,
	}
}

// Manager tracks the live sessions of the web front end and expires idle
// ones. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	cfg      Config
	sessions map[string]*entry

	// now is replaceable in tests
	now func() time.Time
}

type entry struct {
	session      *Session
	lastActivity time.Time
	onExpire     func()
}

// NewManager creates a session manager.
func NewManager(cfg Config) *Manager {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Open creates and registers a new session. onExpire, if non-nil, is
// called once when the session is expired by Sweep.
func (m *Manager) Open(onExpire func()) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, ErrTooManySessions
	}

	s := New()
	m.sessions[s.ID()] = &entry{
		session:      s,
		lastActivity: m.now(),
		onExpire:     onExpire,
	}
	return s, nil
}

// Touch records activity on a session.
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		e.lastActivity = m.now()
	}
}

// Close unregisters a session. Closing an unknown ID is a no-op.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes every session idle for at least the timeout and runs their
// expiry callbacks. It returns the expired IDs.
func (m *Manager) Sweep() []string {
	m.mu.Lock()
	now := m.now()
	var expired []string
	var callbacks []func()
	for id, e := range m.sessions {
		if now.Sub(e.lastActivity) >= m.cfg.IdleTimeout {
			expired = append(expired, id)
			if e.onExpire != nil {
				callbacks = append(callbacks, e.onExpire)
			}
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	// Execute callbacks outside lock
	for _, fn := range callbacks {
		fn()
	}

	sort.Strings(expired)
	return expired
}

// CloseAll removes every session and runs their expiry callbacks.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	var callbacks []func()
	for id, e := range m.sessions {
		if e.onExpire != nil {
			callbacks = append(callbacks, e.onExpire)
		}
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

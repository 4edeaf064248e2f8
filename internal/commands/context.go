// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/prefs"
	"github.com/jeranaias/termfolio/internal/session"
)

// DefaultNavigationDelay lets the triggering text render before leaving.
const DefaultNavigationDelay = 100 * time.Millisecond

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides the collaborators a command handler may use.
// It follows the dependency injection pattern: handlers never reach for
// package-level state.
//
// Session, Prefs and Catalog are required by the built-in handlers that use
// them. Rand and Logger fall back to defaults when nil.
type Context struct {
	// Session is the state of the interactive use issuing the command
	Session *session.Session

	// Prefs persists the active theme
	Prefs prefs.Store

	// Catalog provides the project and theme tables
	Catalog *catalog.Catalog

	// Rand returns a uniform integer in [0, n)
	Rand func(n int) int

	// NavigationDelay is attached to navigation results
	NavigationDelay time.Duration

	// Logger receives handler diagnostics
	Logger *log.Logger
}

// NewContext creates a command context with default random source, delay
// and logger.
func NewContext(sess *session.Session, store prefs.Store, cat *catalog.Catalog) *Context {
	return &Context{
		Session:         sess,
		Prefs:           store,
		Catalog:         cat,
		Rand:            rand.IntN,
		NavigationDelay: DefaultNavigationDelay,
		Logger:          log.Default(),
	}
}

func (c *Context) intn(n int) int {
	if c.Rand == nil {
		return rand.IntN(n)
	}
	return c.Rand(n)
}

func (c *Context) logf(format string, args ...interface{}) {
	if c.Logger == nil {
		log.Printf(format, args...)
		return
	}
	c.Logger.Printf(format, args...)
}

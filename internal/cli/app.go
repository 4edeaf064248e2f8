// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/config"
	"github.com/jeranaias/termfolio/internal/prefs"
	"github.com/jeranaias/termfolio/internal/session"
	"github.com/jeranaias/termfolio/internal/shell"
)

// localVisitor scopes the preferences of the terminal front ends.
const localVisitor = "local"

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// app holds what every front end needs: configuration, content and the
// preference store.
type app struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	logger  *log.Logger

	// store is nil for the memory backend
	store  *prefs.SQLiteStore
	memory *prefs.MemoryStores
}

// loadConfig loads the config file named by --config, or the default one.
// A missing file yields the defaults.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	if g.configPath == "" {
		return config.Load()
	}
	if _, err := os.Stat(g.configPath); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return config.LoadFromPath(g.configPath)
}

// resolvedConfigPath returns the config file in use.
func (g *globalFlags) resolvedConfigPath() (string, error) {
	if g.configPath != "" {
		return g.configPath, nil
	}
	return config.ConfigPath()
}

// newApp loads configuration, content and preferences.
func newApp(g *globalFlags, logger *log.Logger) (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return newAppWithConfig(cfg, logger)
}

func newAppWithConfig(cfg *config.Config, logger *log.Logger) (*app, error) {
	cat := catalog.Default()
	if cfg.Content.Path != "" {
		loaded, err := catalog.LoadFile(cfg.Content.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		cat = loaded
	}

	a := &app{cfg: cfg, catalog: cat, logger: logger, memory: prefs.NewMemoryStores()}
	if cfg.Storage.Backend == "sqlite" {
		store, err := prefs.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		a.store = store
	}
	return a, nil
}

// prefsFor returns the preference store of one visitor.
func (a *app) prefsFor(visitor string) prefs.Store {
	if a.store == nil {
		return a.memory.Scoped(visitor)
	}
	return a.store.Scoped(visitor)
}

// interpreter creates an interpreter for a terminal front end.
func (a *app) interpreter() *shell.Interpreter {
	ctx := commands.NewContext(session.New(), a.prefsFor(localVisitor), a.catalog)
	ctx.Logger = a.logger
	ctx.NavigationDelay = a.cfg.Terminal.NavigationDelay()
	return shell.New(commands.NewRegistry(), ctx)
}

// title is the header of the terminal front ends.
func (a *app) title() string {
	return fmt.Sprintf("%s's Terminal Portfolio", a.catalog.Owner().Handle)
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

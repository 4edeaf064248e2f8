// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for termfolio.
//
// Configuration is TOML with built-in defaults, environment variable
// overrides and validation. The web server can hot-reload the terminal
// section through Watch.
//
// # Key Types
//
//   - Config: main configuration structure with all settings
//   - TerminalConfig: prompt, typing delays, wrap width
//   - StorageConfig: preference store backend
//   - ServerConfig: listen address, session limits, rate limits
//   - Watcher: fsnotify based reloader
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TERMFOLIO_*)
//   - ~/.termfolio/config.toml (directory overridable with TERMFOLIO_HOME)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	delay := cfg.Terminal.TypingDelay()
package config

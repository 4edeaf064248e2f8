// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the command registry of the portfolio terminal.
//
// Handlers receive their collaborators through a Context and describe what
// the display should do through a Result. They never sleep, open URLs or
// touch the display themselves.
//
// # Key Types
//
//   - Registry: read-only name to command mapping
//   - Command: name, help text, argument definitions and handler
//   - Context: session, preference store, catalog and random source
//   - Result: markup text plus optional clear, theme and navigation requests
//
// # Built-in Commands
//
//   - help, about, skills, contact: static text
//   - projects, cd: project table
//   - theme: switch and persist the color theme
//   - clear: reset the display
//   - game, guess: number guessing game
//   - npm run: navigate to the profile or a project repository
//
// # Usage
//
//	reg := commands.NewRegistry()
//	cmd, ok := reg.Lookup("CD")
//	if ok {
//	    res, err := cmd.Handler(ctx, []string{"hh25v3"})
//	}
package commands

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell implements the line interpreter of the portfolio terminal.
//
// An Interpreter turns one submitted line into a dispatched command and a
// result, and drives the line editing that happens before submission:
// history recall and tab completion. It never renders or waits; front ends
// (terminal UI, REPL, web sessions) display its output.
//
// # Usage
//
//	ctx := commands.NewContext(session.New(), prefs.NewMemoryStore(), catalog.Default())
//	sh := shell.New(commands.NewRegistry(), ctx)
//
//	out := sh.Submit("cd hh25v3")
//	show(out.Echo, out.Result.Text)
//
//	line, ok := sh.RecallPrevious(currentInput)
//	c := sh.Complete("th") // c.Input == "theme "
package shell

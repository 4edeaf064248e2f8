// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the termfolio command line.
//
// Commands:
//
//	termfolio              Terminal UI (same as tui)
//	termfolio tui          Full-screen terminal UI, REPL when not a TTY
//	termfolio repl         Line-based prompt with history and completion
//	termfolio run <line>   Interpret one line and print the result
//	termfolio serve        Web server for the browser terminal
//	termfolio config ...   show, init, path, get, set
//	termfolio version      Build info
//
// Every command accepts --config to select the config file.
package cli

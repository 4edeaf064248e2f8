// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across termfolio.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, FitWidth: terminal cell aware truncation and padding
//   - SingleLine: whitespace collapsing for log output
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	status := util.FitWidth(prompt, width)
//	err := util.AtomicWriteFile(path, data, 0600)
package util

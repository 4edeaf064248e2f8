// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"time"

	"github.com/jeranaias/termfolio/internal/catalog"
)

// =============================================================================
// RESULT TYPE
// =============================================================================

// Result is what a command asks the display to do. Text is Markdown and
// may be empty. The other fields are optional requests carried out by the
// front end, in this order: clear, apply theme, show text, navigate.
type Result struct {
	// Text is the output to show
	Text string

	// Clear resets the display to its banner
	Clear bool

	// Theme, when set, is applied to the display
	Theme *catalog.Theme

	// Navigate, when set, leaves for a URL after a delay
	Navigate *Navigation
}

// Navigation is a delayed, fire-and-forget request to open a URL.
type Navigation struct {
	URL   string
	Delay time.Duration
}

// Text builds a text-only result.
func Text(s string) Result {
	return Result{Text: s}
}

// IsEmpty reports whether the result requests nothing.
func (r Result) IsEmpty() bool {
	return r.Text == "" && !r.Clear && r.Theme == nil && r.Navigate == nil
}

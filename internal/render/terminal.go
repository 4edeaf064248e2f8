// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// DefaultWordWrap is the wrap width used when none is configured.
const DefaultWordWrap = 80

// =============================================================================
// MARKDOWN RENDERING (TERMINAL)
// =============================================================================

// Terminal renders Markdown for ANSI terminals.
type Terminal struct {
	renderer *glamour.TermRenderer
	plain    bool
}

// NewTerminal creates a terminal renderer with a glamour standard style
// ("dark", "light", "notty", ...) and wrap width.
func NewTerminal(style string, width int) (*Terminal, error) {
	if width <= 0 {
		width = DefaultWordWrap
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Terminal{renderer: r}, nil
}

// NewPlain creates a renderer that returns Markdown unchanged, for output
// that is not a TTY.
func NewPlain() *Terminal {
	return &Terminal{plain: true}
}

// Render renders md. It returns md unchanged if rendering fails.
func (t *Terminal) Render(md string) string {
	if md == "" {
		return ""
	}
	if t.plain || t.renderer == nil {
		return md
	}
	out, err := t.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// =============================================================================
// TYPEWRITER FRAMES (TERMINAL)
// =============================================================================

// ANSIFrames returns the successive states of s being typed, one visible
// cell per frame, line by line. Escape sequences never count toward width
// and are never split. The last frame equals s.
func ANSIFrames(s string) []string {
	var frames []string
	tw := NewTypewriter(s)
	for {
		frame, ok := tw.Next()
		if !ok {
			return frames
		}
		frames = append(frames, frame)
	}
}

// Typewriter produces the frames of ANSIFrames one at a time.
type Typewriter struct {
	lines []string
	line  int
	cells int
	width int
	done  strings.Builder
}

// NewTypewriter starts typing s.
func NewTypewriter(s string) *Typewriter {
	tw := &Typewriter{}
	if s != "" {
		tw.lines = strings.Split(s, "\n")
		tw.width = ansi.StringWidth(tw.lines[0])
	}
	return tw
}

// Next returns the next frame, or false once the full text was returned.
func (t *Typewriter) Next() (string, bool) {
	if t.line >= len(t.lines) {
		return "", false
	}

	line := t.lines[t.line]
	t.cells++
	if t.cells < t.width {
		return t.done.String() + ansi.Truncate(line, t.cells, ""), true
	}

	// The full line keeps trailing escape sequences.
	frame := t.done.String() + line
	t.done.WriteString(line)
	t.line++
	t.cells = 0
	if t.line < len(t.lines) {
		t.done.WriteByte('\n')
		t.width = ansi.StringWidth(t.lines[t.line])
	}
	return frame, true
}

// Finish returns the full text and ends typing.
func (t *Typewriter) Finish() string {
	full := strings.Join(t.lines, "\n")
	t.line = len(t.lines)
	return full
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/termfolio/internal/catalog"
)

// Theme holds the styled components of the terminal for one portfolio
// theme. Colors degrade to the terminal's color profile.
type Theme struct {
	// Name is the portfolio theme name
	Name string

	// IsLight is true for themes with a light background
	IsLight bool

	// Terminal capabilities
	ColorProfile termenv.Profile

	// ==========================================================================
	// PALETTE
	// ==========================================================================

	Background lipgloss.Color
	HeaderBg   lipgloss.Color
	Text       lipgloss.Color
	PromptFg   lipgloss.Color
	CursorFg   lipgloss.Color
	Accent     lipgloss.Color

	// ==========================================================================
	// LAYOUT STYLES
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderDots  lipgloss.Style

	// ==========================================================================
	// OUTPUT STYLES
	// ==========================================================================

	Banner    lipgloss.Style
	Output    lipgloss.Style
	EchoLine  lipgloss.Style
	Highlight lipgloss.Style
	Listing   lipgloss.Style

	// ==========================================================================
	// INPUT STYLES
	// ==========================================================================

	Prompt lipgloss.Style
	Input  lipgloss.Style
	Cursor lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style
	Error       lipgloss.Style

	renderer *lipgloss.Renderer
}

// NewTheme creates a Theme for t using the terminal's detected color
// profile.
func NewTheme(t catalog.Theme) *Theme {
	return NewThemeWithProfile(t, termenv.ColorProfile())
}

// NewThemeWithProfile creates a Theme for t rendered with profile.
func NewThemeWithProfile(t catalog.Theme, profile termenv.Profile) *Theme {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)

	bg := colorOr(t.Background, FallbackBackground)
	isLight := IsLightColor(string(bg))
	r.SetHasDarkBackground(!isLight)

	th := &Theme{
		Name:         t.Name,
		IsLight:      isLight,
		ColorProfile: profile,
		Background:   bg,
		HeaderBg:     colorOr(t.Header, FallbackHeader),
		Text:         colorOr(t.Text, FallbackText),
		PromptFg:     colorOr(t.Prompt, FallbackPrompt),
		CursorFg:     colorOr(t.Cursor, colorOr(t.Text, FallbackText)),
		Accent:       colorOr(t.Highlight, FallbackHighlight),
		renderer:     r,
	}
	th.initStyles()
	return th
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	r := t.renderer

	t.App = r.NewStyle().
		Background(t.Background).
		Foreground(t.Text)

	t.Header = r.NewStyle().
		Background(t.HeaderBg).
		Foreground(t.Text).
		Padding(0, 1)

	t.HeaderTitle = r.NewStyle().
		Background(t.HeaderBg).
		Foreground(t.Text).
		Bold(true)

	t.HeaderDots = r.NewStyle().
		Background(t.HeaderBg).
		Foreground(t.Accent)

	t.Banner = r.NewStyle().
		Foreground(t.Text)

	t.Output = r.NewStyle().
		Foreground(t.Text)

	t.EchoLine = r.NewStyle().
		Foreground(t.Text)

	t.Highlight = r.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	t.Listing = r.NewStyle().
		Foreground(t.Accent)

	t.Prompt = r.NewStyle().
		Foreground(t.PromptFg).
		Bold(true)

	t.Input = r.NewStyle().
		Foreground(t.Text)

	t.Cursor = r.NewStyle().
		Foreground(t.CursorFg)

	t.StatusBar = r.NewStyle().
		Background(t.HeaderBg).
		Foreground(TextMuted).
		Padding(0, 1)

	t.StatusKey = r.NewStyle().
		Background(t.HeaderBg).
		Foreground(t.Accent).
		Bold(true)

	t.StatusValue = r.NewStyle().
		Background(t.HeaderBg).
		Foreground(t.Text)

	t.Error = r.NewStyle().
		Foreground(Rose).
		Bold(true)
}

// MarkdownStyle returns the glamour standard style matching the theme's
// background, or "notty" when the terminal has no colors.
func (t *Theme) MarkdownStyle() string {
	switch {
	case t.ColorProfile == termenv.Ascii:
		return "notty"
	case t.IsLight:
		return "light"
	default:
		return "dark"
	}
}

// PromptLine renders the prompt followed by a line of input, as echoed
// above the input after submission.
func (t *Theme) PromptLine(prompt, line string) string {
	if line == "" {
		return t.Prompt.Render(prompt)
	}
	return t.Prompt.Render(prompt) + " " + t.EchoLine.Render(line)
}

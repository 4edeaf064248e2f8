// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/termfolio/internal/catalog"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewThemeWithProfile_AllCatalogThemes(t *testing.T) {
	c := catalog.Default()

	wantLight := map[string]bool{
		"light":           true,
		"solarized-light": true,
	}

	for _, name := range c.ThemeNames() {
		t.Run(name, func(t *testing.T) {
			ct, _ := c.Theme(name)
			th := NewThemeWithProfile(ct, termenv.TrueColor)

			if th.Name != name {
				t.Errorf("Name = %q, want %q", th.Name, name)
			}
			if th.IsLight != wantLight[name] {
				t.Errorf("IsLight = %v, want %v", th.IsLight, wantLight[name])
			}
			if th.Background != lipgloss.Color(ct.Background) {
				t.Errorf("Background = %q, want %q", th.Background, ct.Background)
			}
		})
	}
}

func TestThemeStyles_Render(t *testing.T) {
	ct, _ := catalog.Default().Theme("hackerman")
	th := NewThemeWithProfile(ct, termenv.TrueColor)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"App", th.App},
		{"Header", th.Header},
		{"Prompt", th.Prompt},
		{"Output", th.Output},
		{"Highlight", th.Highlight},
		{"StatusBar", th.StatusBar},
		{"Error", th.Error},
	}

	for _, s := range styles {
		rendered := s.style.Render("test")
		if !strings.Contains(rendered, "test") {
			t.Errorf("%s style lost its content: %q", s.name, rendered)
		}
		if !strings.Contains(rendered, "\x1b[") {
			t.Errorf("%s style should emit color with a TrueColor profile", s.name)
		}
	}
}

func TestThemeStyles_AsciiProfile(t *testing.T) {
	ct, _ := catalog.Default().Theme("dark")
	th := NewThemeWithProfile(ct, termenv.Ascii)

	if got := th.Prompt.Render("visitor@portfolio:~$"); strings.Contains(got, "\x1b[3") {
		t.Errorf("Ascii profile should not emit colors: %q", got)
	}
	if th.MarkdownStyle() != "notty" {
		t.Errorf("MarkdownStyle() = %q, want notty", th.MarkdownStyle())
	}
}

func TestTheme_FallbackColors(t *testing.T) {
	th := NewThemeWithProfile(catalog.Theme{Name: "bare"}, termenv.TrueColor)

	if th.Background != FallbackBackground {
		t.Errorf("Background = %q, want fallback", th.Background)
	}
	if th.CursorFg != FallbackText {
		t.Errorf("CursorFg = %q, want text fallback", th.CursorFg)
	}
	if th.IsLight {
		t.Error("fallback background is dark")
	}
}

func TestTheme_MarkdownStyle(t *testing.T) {
	c := catalog.Default()
	tests := []struct {
		theme string
		want  string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"solarized-light", "light"},
		{"ubuntu", "dark"},
	}
	for _, tt := range tests {
		ct, _ := c.Theme(tt.theme)
		if got := NewThemeWithProfile(ct, termenv.ANSI256).MarkdownStyle(); got != tt.want {
			t.Errorf("%s: MarkdownStyle() = %q, want %q", tt.theme, got, tt.want)
		}
	}
}

func TestTheme_PromptLine(t *testing.T) {
	th := NewThemeWithProfile(catalog.Theme{Name: "plain"}, termenv.Ascii)

	if got := th.PromptLine("$", "help"); got != "$ help" {
		t.Errorf("PromptLine() = %q", got)
	}
	if got := th.PromptLine("$", ""); got != "$" {
		t.Errorf("PromptLine() with empty line = %q", got)
	}
}

// =============================================================================
// COLOR HELPER TESTS
// =============================================================================

func TestLuminance(t *testing.T) {
	tests := []struct {
		hex   string
		light bool
	}{
		{"#000000", false},
		{"#ffffff", true},
		{"#fdf6e3", true},
		{"#002b36", false},
		{"#300a24", false},
		{"not-a-color", false},
	}
	for _, tt := range tests {
		if got := IsLightColor(tt.hex); got != tt.light {
			t.Errorf("IsLightColor(%q) = %v, want %v", tt.hex, got, tt.light)
		}
	}

	if l := Luminance("#ffffff"); l < 0.99 || l > 1.01 {
		t.Errorf("Luminance(white) = %v, want 1", l)
	}
}

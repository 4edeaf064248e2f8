// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// FALLBACK COLORS
// =============================================================================

// Used when a theme leaves a color unset.
var (
	FallbackBackground = lipgloss.Color("#1e1e1e")
	FallbackHeader     = lipgloss.Color("#333333")
	FallbackText       = lipgloss.Color("#d4d4d4")
	FallbackPrompt     = lipgloss.Color("#4ec9b0")
	FallbackHighlight  = lipgloss.Color("#569cd6")
)

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, critical alerts, danger states
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// TextMuted - Hints, status line, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// HELPERS
// =============================================================================

// colorOr returns hex as a color, or fallback when hex is empty.
func colorOr(hex string, fallback lipgloss.Color) lipgloss.Color {
	if hex == "" {
		return fallback
	}
	return lipgloss.Color(hex)
}

// Luminance returns the relative luminance (0 to 1) of a "#rrggbb" color.
// Unparseable colors are treated as black.
func Luminance(hex string) float64 {
	c := termenv.ConvertToRGB(termenv.RGBColor(hex))
	return 0.2126*linear(c.R) + 0.7152*linear(c.G) + 0.0722*linear(c.B)
}

// IsLightColor reports whether text on hex should be dark.
func IsLightColor(hex string) bool {
	return Luminance(hex) > 0.5
}

// linear converts an sRGB channel to linear light.
func linear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// =============================================================================
// MARKDOWN RENDERING (HTML)
// =============================================================================

// HTML renders Markdown to sanitized HTML fragments. It is safe for
// concurrent use.
type HTML struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTML creates an HTML renderer. External links open in a new tab.
func NewHTML() *HTML {
	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			// sanitized below
			goldmark.WithRendererOptions(ghtml.WithUnsafe()),
		),
		policy: policy,
	}
}

// Render converts md to a sanitized HTML fragment.
func (h *HTML) Render(md string) (string, error) {
	if md == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return strings.TrimSpace(h.policy.Sanitize(buf.String())), nil
}

// Escape returns s as HTML text.
func Escape(s string) string {
	return html.EscapeString(s)
}

// =============================================================================
// TYPEWRITER STEPS (HTML)
// =============================================================================

// HTMLSteps splits an HTML fragment into the units appended one per
// animation tick: a whole tag, a whole character entity, or one character
// of text. Concatenating the steps yields the fragment.
func HTMLSteps(fragment string) []string {
	var steps []string
	z := html.NewTokenizer(strings.NewReader(fragment))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Unparseable tail: emit it in one piece.
				if rest := string(z.Raw()); rest != "" {
					steps = append(steps, rest)
				}
			}
			return steps
		}

		raw := string(z.Raw())
		if tt != html.TextToken {
			steps = append(steps, raw)
			continue
		}
		steps = appendTextSteps(steps, raw)
	}
}

// appendTextSteps splits raw text into runes, keeping "&...;" entities whole.
func appendTextSteps(steps []string, raw string) []string {
	for len(raw) > 0 {
		if raw[0] == '&' {
			if end := entityEnd(raw); end > 0 {
				steps = append(steps, raw[:end])
				raw = raw[end:]
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(raw)
		steps = append(steps, raw[:size])
		raw = raw[size:]
	}
	return steps
}

// entityEnd returns the length of the entity at the start of s, or 0.
func entityEnd(s string) int {
	const maxEntity = 32
	for i := 1; i < len(s) && i < maxEntity; i++ {
		switch c := s[i]; {
		case c == ';':
			if i == 1 {
				return 0
			}
			return i + 1
		case c == '#' && i == 1:
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return 0
		}
	}
	return 0
}

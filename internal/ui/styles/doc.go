// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles turns portfolio themes into Lip Gloss styles for the
terminal front end.

A catalog theme carries six hex colors (background, header, text, prompt,
cursor, highlight). NewTheme maps them onto the styles the terminal uses
and picks the Markdown style that reads on the theme's background:

	th := styles.NewTheme(theme)
	prompt := th.Prompt.Render("visitor@portfolio:~$")
	md, _ := render.NewTerminal(th.MarkdownStyle(), 80)

Colors are rendered through a dedicated renderer so tests can pin the
color profile with NewThemeWithProfile.
*/
package styles

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package terminal is the Bubble Tea front end of the portfolio.

It draws a header bar, a scrollback viewport and an input line, and feeds
submitted lines to a shell.Interpreter. Output is rendered with glamour
and typed cell by cell; Enter is ignored until typing finishes and Esc
skips the animation.

	interp := shell.New(commands.NewRegistry(), ctx)
	m := terminal.New(interp, terminal.Options{
		Prompt:      "visitor@portfolio:~$",
		BannerDelay: 30 * time.Millisecond,
		TypingDelay: 5 * time.Millisecond,
		Profile:     termenv.ColorProfile(),
		Navigator:   navigate.NewScheduler(nil, logger),
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()

# Keys

	enter    run the input line
	up/down  recall history
	tab      complete the input line
	ctrl+l   clear the screen
	esc      skip typing
	pgup/dn  scroll
	ctrl+c   quit
*/
package terminal

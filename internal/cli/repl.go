// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/config"
	"github.com/jeranaias/termfolio/internal/navigate"
	"github.com/jeranaias/termfolio/internal/render"
	"github.com/jeranaias/termfolio/internal/shell"
	"github.com/jeranaias/termfolio/internal/ui/styles"
	"github.com/jeranaias/termfolio/internal/ui/terminal"
)

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\033[H\033[2J"

func newREPLCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Runs a line-based terminal",
		Long: `Runs the portfolio as a plain line-based prompt.

Supports line editing, history (up/down) and tab completion. Output is
typed like the terminal UI when stdout is a terminal. Exit with Ctrl+D.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, g)
		},
	}
}

func runREPL(cmd *cobra.Command, g *globalFlags) error {
	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
	a, err := newApp(g, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	interp := a.interpreter()
	editor := newLineEditor(historyPath(), interp)
	defer editor.Close()

	tty := IsStdoutTTY()
	r := &repl{
		interp:  interp,
		out:     cmd.OutOrStdout(),
		prompt:  a.cfg.Terminal.Prompt + " ",
		profile: GetColorProfile(),
		wrap:    wrapWidth(a.cfg.Terminal.WordWrap),
		tty:     tty,
	}
	if tty {
		r.bannerDelay = a.cfg.Terminal.BannerDelay()
		r.typingDelay = a.cfg.Terminal.TypingDelay()
		if a.cfg.Terminal.OpenBrowser {
			nav := navigate.NewScheduler(nil, logger)
			defer nav.Stop()
			r.nav = nav
		}
	}
	return r.run(cmd.Context(), editor)
}

// =============================================================================
// LINE EDITOR
// =============================================================================

// lineReader reads one line of input after a prompt.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// lineEditor provides line editing, history and tab completion.
type lineEditor struct {
	line        *liner.State
	historyFile string
	last        string
}

func newLineEditor(historyFile string, interp *shell.Interpreter) *lineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(completer(interp))

	e := &lineEditor{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return e
}

// Prompt reads a line. Non-blank lines other than an immediate repeat are
// added to the editor history, as the session records them.
func (e *lineEditor) Prompt(prompt string) (string, error) {
	input, err := e.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" && input != e.last {
		e.line.AppendHistory(input)
		e.last = input
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (e *lineEditor) Close() {
	if e.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(e.historyFile), 0755); err == nil {
			if f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				_, _ = e.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	_ = e.line.Close()
}

func historyPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

// completer returns full-line candidates for liner. A single match
// completes the line; several are printed by liner.
func completer(interp *shell.Interpreter) liner.Completer {
	return func(line string) []string {
		comp := interp.Complete(line)
		if comp.Completed() {
			return []string{comp.Input}
		}
		prefix := line
		if !strings.HasSuffix(line, " ") {
			prefix = line[:strings.LastIndexFunc(line, unicode.IsSpace)+1]
		}
		out := make([]string, len(comp.Matches))
		for i, m := range comp.Matches {
			out[i] = prefix + m
		}
		return out
	}
}

// =============================================================================
// REPL LOOP
// =============================================================================

type repl struct {
	interp  *shell.Interpreter
	out     io.Writer
	prompt  string
	profile termenv.Profile
	wrap    int
	tty     bool
	nav     terminal.Navigator

	bannerDelay time.Duration
	typingDelay time.Duration

	md *render.Terminal
}

// run prints the banner and interprets lines until end of input.
func (r *repl) run(ctx context.Context, in lineReader) error {
	r.applyTheme(r.interp.StartupTheme())
	if err := r.typeOut(ctx, r.md.Render(r.interp.Banner()), r.bannerDelay); err != nil {
		return err
	}

	for {
		line, err := in.Prompt(r.prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		if err := r.submit(ctx, line); err != nil {
			return err
		}
	}
}

// submit interprets a line: clear, theme, typed text, then navigation.
func (r *repl) submit(ctx context.Context, line string) error {
	res := r.interp.Submit(line).Result

	if res.Clear {
		if r.tty {
			fmt.Fprint(r.out, clearScreen)
		}
		fmt.Fprintln(r.out, r.md.Render(r.interp.Banner()))
	}
	if res.Theme != nil {
		r.applyTheme(*res.Theme)
	}
	if err := r.typeOut(ctx, r.md.Render(res.Text), r.typingDelay); err != nil {
		return err
	}
	if res.Navigate != nil {
		r.navigate(res.Navigate)
	}
	return nil
}

func (r *repl) applyTheme(t catalog.Theme) {
	if !r.tty {
		r.md = render.NewPlain()
		return
	}
	md, err := render.NewTerminal(styles.NewThemeWithProfile(t, r.profile).MarkdownStyle(), r.wrap)
	if err != nil {
		md = render.NewPlain()
	}
	r.md = md
}

func (r *repl) navigate(nav *commands.Navigation) {
	if r.nav == nil {
		fmt.Fprintf(r.out, "Open %s\n", nav.URL)
		return
	}
	if err := r.nav.Schedule(nav.URL, nav.Delay); err != nil {
		fmt.Fprintf(r.out, "%s cannot open %s: %v\n", ErrorStyle.Render("[!]"), nav.URL, err)
	}
}

// typeOut writes text one cell at a time followed by a newline. A zero
// delay writes it at once.
func (r *repl) typeOut(ctx context.Context, text string, delay time.Duration) error {
	if text == "" {
		return nil
	}
	if delay <= 0 {
		_, err := fmt.Fprintln(r.out, text)
		return err
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	tw := render.NewTypewriter(text)
	printed := ""
	for {
		frame, ok := tw.Next()
		if !ok {
			break
		}
		// frames grow by one cell; anything else is written at the end
		if strings.HasPrefix(frame, printed) {
			if _, err := io.WriteString(r.out, frame[len(printed):]); err != nil {
				return err
			}
			printed = frame
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if rest, ok := strings.CutPrefix(text, printed); ok {
		_, err := fmt.Fprintln(r.out, rest)
		return err
	}
	_, err := fmt.Fprintln(r.out, "\n"+text)
	return err
}

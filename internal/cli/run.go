// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/termfolio/internal/render"
	"github.com/jeranaias/termfolio/internal/ui/styles"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "run <command line>",
		Short: "Interprets one command line and prints the result",
		Long: `Interprets one command line, prints its output and exits.

Arguments are joined with spaces into the line. Output is Markdown
rendered for the terminal, or left as Markdown when stdout is not a
terminal or --plain is given. Navigation prints the URL instead of
opening it.`,
		Example: `  termfolio run about
  termfolio run cd hh25v3
  termfolio run --plain projects > projects.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g, log.New(cmd.ErrOrStderr(), "", log.LstdFlags))
			if err != nil {
				return err
			}
			defer a.Close()

			interp := a.interpreter()
			res := interp.Submit(strings.Join(args, " ")).Result

			md := render.NewPlain()
			if !plain && IsStdoutTTY() {
				theme := interp.StartupTheme()
				if res.Theme != nil {
					theme = *res.Theme
				}
				style := styles.NewThemeWithProfile(theme, GetColorProfile()).MarkdownStyle()
				if r, err := render.NewTerminal(style, wrapWidth(a.cfg.Terminal.WordWrap)); err == nil {
					md = r
				}
			}

			out := cmd.OutOrStdout()
			if text := md.Render(res.Text); text != "" {
				fmt.Fprintln(out, text)
			}
			if res.Navigate != nil {
				fmt.Fprintf(out, "Open %s\n", res.Navigate.URL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print Markdown without terminal rendering")
	return cmd
}

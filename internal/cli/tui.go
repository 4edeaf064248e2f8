// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/termfolio/internal/config"
	"github.com/jeranaias/termfolio/internal/navigate"
	"github.com/jeranaias/termfolio/internal/ui/terminal"
)

func newTUICmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Runs the terminal UI (default)",
		Long: `Runs the portfolio as a full-screen terminal UI.

Falls back to the line-based REPL when stdin or stdout is not a terminal.
Logs go to the configured log file since the UI owns the screen.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
	}
}

func runTUI(cmd *cobra.Command, g *globalFlags) error {
	if !IsTTY() || !IsStdoutTTY() {
		return runREPL(cmd, g)
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	logFile, err := openTUILog(cfg)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger := log.Default()

	a, err := newAppWithConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := terminal.Options{
		Title:       a.title(),
		Prompt:      cfg.Terminal.Prompt,
		BannerDelay: cfg.Terminal.BannerDelay(),
		TypingDelay: cfg.Terminal.TypingDelay(),
		WordWrap:    wrapWidth(cfg.Terminal.WordWrap),
		Profile:     GetColorProfile(),
	}
	if cfg.Terminal.OpenBrowser {
		nav := navigate.NewScheduler(nil, logger)
		defer nav.Stop()
		opts.Navigator = nav
	}

	logger.Printf("TUI_START | version=%s", Version)
	_, err = tea.NewProgram(terminal.New(a.interpreter(), opts), tea.WithAltScreen()).Run()
	return err
}

// openTUILog sends the standard logger to the configured log file, or
// discards logs when none is configured.
func openTUILog(cfg *config.Config) (*os.File, error) {
	if cfg.Log.File == "" {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0755); err != nil {
		return nil, err
	}
	return tea.LogToFile(cfg.Log.File, "termfolio")
}

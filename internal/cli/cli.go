// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are the flags shared by every command.
type globalFlags struct {
	configPath string
}

// NewRootCmd builds the termfolio command tree. Without a subcommand the
// terminal UI is started.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "termfolio",
		Short: "termfolio - a terminal portfolio",
		Long: `termfolio is a portfolio presented as a terminal.

Visitors type commands such as help, about, projects and cd <project>
to explore it. It runs as:

* A terminal UI (default) or a plain line-based REPL.
* A web server that serves the same terminal to browsers.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Path of the config file (default ~/.termfolio/config.toml)")

	root.AddCommand(
		newTUICmd(g),
		newREPLCmd(g),
		newRunCmd(g),
		newServeCmd(g),
		newConfigCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Shows build info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "termfolio %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/termfolio/internal/config"
)

// ErrConfigExists is returned by config init when the file already exists.
var ErrConfigExists = errors.New("config file already exists (use --force to overwrite)")

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Example: `  termfolio config show
  termfolio config set terminal.typing_delay_ms 0
  termfolio config set server.allowed_origins https://example.com,https://www.example.com
  termfolio config get server.addr`,
	}
	cmd.AddCommand(
		newConfigShowCmd(g),
		newConfigInitCmd(g),
		newConfigPathCmd(g),
		newConfigGetCmd(g),
		newConfigSetCmd(g),
	)
	return cmd
}

func newConfigShowCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Displays the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				fmt.Fprintln(out, cfg.String())
				return nil
			}
			path, _ := g.resolvedConfigPath()
			return printConfig(out, cfg, path)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

// printConfig prints every key grouped by section.
func printConfig(out io.Writer, cfg *config.Config, path string) error {
	fmt.Fprintln(out, TitleStyle.Render("termfolio Configuration"))

	section := ""
	for _, key := range config.GetAllKeys() {
		value, err := cfg.Get(key)
		if err != nil {
			return err
		}
		head, name, ok := strings.Cut(key, ".")
		if !ok {
			head, name = "general", key
		}
		if head != section {
			if section != "" {
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, SectionStyle.Render("["+head+"]"))
			section = head
		}
		fmt.Fprintf(out, "  %s%s\n", LabelStyle.Render(name+":"), ValueStyle.Render(formatValue(value)))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Config file: %s\n", PathStyle.Render(path))
	return nil
}

func formatValue(v interface{}) string {
	if list, ok := v.([]string); ok {
		return strings.Join(list, ",")
	}
	return fmt.Sprint(v)
}

func newConfigInitCmd(g *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Writes a config file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.resolvedConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s: %w", path, ErrConfigExists)
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", SuccessStyle.Render("[OK]"), PathStyle.Render(path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigPathCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Shows the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := g.resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigGetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "get <key>",
		Short:     "Prints one configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.GetAllKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
			return nil
		},
	}
}

func newConfigSetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Sets one configuration value and saves the file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.GetAllKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration value: %w", err)
			}

			path, err := g.resolvedConfigPath()
			if err != nil {
				return err
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
			return nil
		},
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/config"
	"github.com/jeranaias/termfolio/internal/server"
)

// shutdownTimeout bounds the graceful shutdown of the web server.
const shutdownTimeout = 10 * time.Second

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the terminal to browsers",
		Long: `Runs a web server presenting the portfolio terminal in the browser.

Each browser tab gets its own terminal session over a WebSocket. A
visitor's theme is remembered across visits. Terminal timings are
reloaded when the config file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, g *globalFlags, addr string) error {
	logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)

	a, err := newApp(g, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if addr != "" {
		a.cfg.Server.Addr = addr
	}

	opts := server.OptionsFromConfig(a.cfg)
	opts.Version = Version
	opts.Catalog = a.catalog
	opts.Registry = commands.NewRegistry()
	opts.Logger = logger
	opts.Prefs = a.prefsFor

	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	if path, err := g.resolvedConfigPath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			w, err := config.Watch(path, func(cfg *config.Config) {
				srv.UpdateTerminal(cfg.Terminal)
			}, logger)
			if err != nil {
				logger.Printf("CONFIG_WATCH | disabled path=%s: %v", path, err)
			} else {
				defer w.Close()
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

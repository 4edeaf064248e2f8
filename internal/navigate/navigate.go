// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package navigate carries out navigation requests from terminal front
// ends by opening the system browser after a short delay.
package navigate

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// ErrUnsupportedURL is returned for URLs that are not absolute http(s).
var ErrUnsupportedURL = errors.New("unsupported navigation url")

// Opener opens a URL.
type Opener func(rawURL string) error

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler runs delayed, fire-and-forget navigations.
type Scheduler struct {
	open   Opener
	logger *log.Logger

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewScheduler creates a scheduler. A nil opener opens the system browser.
func NewScheduler(open Opener, logger *log.Logger) *Scheduler {
	if open == nil {
		open = OpenBrowser
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{open: open, logger: logger, timers: make(map[*time.Timer]struct{})}
}

// Schedule opens rawURL after delay without waiting for it. Open failures
// are logged.
func (s *Scheduler) Schedule(rawURL string, delay time.Duration) error {
	if err := Validate(rawURL); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		// Blocks until Schedule has registered t.
		s.mu.Lock()
		delete(s.timers, t)
		s.mu.Unlock()

		if err := s.open(rawURL); err != nil {
			s.logger.Printf("NAVIGATE | failed to open url=%s: %v", rawURL, err)
		}
	})
	s.timers[t] = struct{}{}
	return nil
}

// Pending returns the number of navigations that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels navigations that have not fired yet.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.timers {
		t.Stop()
	}
	clear(s.timers)
}

// Validate checks that rawURL is an absolute http or https URL.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
	return nil
}

// OpenBrowser opens rawURL in the default browser for the OS.
func OpenBrowser(rawURL string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

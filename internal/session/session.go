// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Guessing game bounds, inclusive.
const (
	GameMin = 1
	GameMax = 10
)

// ErrSecretOutOfRange is returned when a game is started with a secret
// outside [GameMin, GameMax].
var ErrSecretOutOfRange = errors.New("game secret out of range")

// =============================================================================
// SESSION STATE
// =============================================================================

// Session is the state of one interactive use of the interpreter.
//
// A Session is owned by a single goroutine (the event loop of its front
// end) and is not safe for concurrent use.
//
// Invariants:
//   - 0 <= cursor <= len(history); cursor == len(history) means the live input.
//   - history is append-only and never holds the same line twice in a row.
//   - the game secret, when set, lies within [GameMin, GameMax].
type Session struct {
	id        string
	startedAt time.Time

	history []string
	cursor  int
	pending string

	secret  int
	playing bool
}

// New creates an empty session with a fresh ID.
func New() *Session {
	return &Session{
		id:        uuid.NewString(),
		startedAt: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// =============================================================================
// HISTORY
// =============================================================================

// History returns a copy of the submitted lines, oldest first.
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// Cursor returns the history cursor.
func (s *Session) Cursor() int {
	return s.cursor
}

// Pending returns the input saved when history browsing started.
func (s *Session) Pending() string {
	return s.pending
}

// Browsing reports whether the cursor is on a history entry.
func (s *Session) Browsing() bool {
	return s.cursor < len(s.history)
}

// Record appends line unless it repeats the newest entry, then stops
// browsing. It reports whether the line was appended.
func (s *Session) Record(line string) bool {
	appended := false
	if line != "" && (len(s.history) == 0 || s.history[len(s.history)-1] != line) {
		s.history = append(s.history, line)
		appended = true
	}
	s.cursor = len(s.history)
	return appended
}

// Previous moves one entry back in history and returns it. current is the
// live input, saved the first time browsing starts so Next can restore it.
// At the oldest entry it is a no-op.
func (s *Session) Previous(current string) (string, bool) {
	if s.cursor == len(s.history) {
		s.pending = current
	}
	if s.cursor == 0 {
		return "", false
	}
	s.cursor--
	return s.history[s.cursor], true
}

// Next moves one entry forward. Stepping past the newest entry returns the
// saved live input. At the live input it is a no-op.
func (s *Session) Next() (string, bool) {
	switch {
	case s.cursor < len(s.history)-1:
		s.cursor++
		return s.history[s.cursor], true
	case s.cursor == len(s.history)-1:
		s.cursor++
		return s.pending, true
	default:
		return "", false
	}
}

// =============================================================================
// GUESSING GAME
// =============================================================================

// StartGame begins a round with the given secret, replacing any active one.
func (s *Session) StartGame(secret int) error {
	if secret < GameMin || secret > GameMax {
		return ErrSecretOutOfRange
	}
	s.secret = secret
	s.playing = true
	return nil
}

// Secret returns the active secret, if a round is in progress.
func (s *Session) Secret() (int, bool) {
	return s.secret, s.playing
}

// EndGame clears the active round.
func (s *Session) EndGame() {
	s.secret = 0
	s.playing = false
}

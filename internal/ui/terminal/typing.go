// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/render"
)

// minTick is the fastest the screen is redrawn while typing. Shorter
// per-character delays type several cells per tick.
const minTick = 16 * time.Millisecond

// typeTickMsg advances the typing animation with the matching id.
type typeTickMsg struct {
	id int
}

// typing is one output block being typed.
type typing struct {
	id       int
	tw       *render.Typewriter
	frame    string
	interval time.Duration
	steps    int

	// banner is set while the welcome banner is typed
	banner bool

	// navigate is carried out once the block is fully shown
	navigate *commands.Navigation
}

func newTyping(id int, text string, delay time.Duration) *typing {
	interval, steps := delay, 1
	if delay < minTick {
		interval = minTick
		steps = int((minTick + delay - 1) / delay)
	}
	return &typing{
		id:       id,
		tw:       render.NewTypewriter(text),
		interval: interval,
		steps:    steps,
	}
}

// advance types the next cells. It returns false once the text is
// fully typed.
func (t *typing) advance() bool {
	for i := 0; i < t.steps; i++ {
		frame, ok := t.tw.Next()
		if !ok {
			return false
		}
		t.frame = frame
	}
	return true
}

func (t *typing) tick() tea.Cmd {
	id := t.id
	return tea.Tick(t.interval, func(time.Time) tea.Msg {
		return typeTickMsg{id: id}
	})
}

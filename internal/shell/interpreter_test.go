// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/prefs"
	"github.com/jeranaias/termfolio/internal/session"
)

type fixture struct {
	sh    *Interpreter
	store *prefs.MemoryStore
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := prefs.NewMemoryStore()
	logs := &bytes.Buffer{}

	ctx := commands.NewContext(session.New(), store, catalog.Default())
	ctx.Rand = func(int) int { return 6 } // secret 7
	ctx.Logger = log.New(logs, "", 0)

	return &fixture{sh: New(commands.NewRegistry(), ctx), store: store, logs: logs}
}

func TestSubmit_BlankInput(t *testing.T) {
	f := newFixture(t)

	for _, line := range []string{"", "   ", "\t"} {
		out := f.sh.Submit(line)
		assert.Equal(t, line, out.Echo)
		assert.Empty(t, out.Command)
		assert.True(t, out.Result.IsEmpty())
	}
	assert.Empty(t, f.sh.Session().History())
	assert.Equal(t, 0, f.sh.Session().Cursor())
}

func TestSubmit_HistorySuppressesImmediateRepeats(t *testing.T) {
	f := newFixture(t)

	f.sh.Submit("help")
	f.sh.Submit("help")
	assert.Len(t, f.sh.Session().History(), 1)

	f.sh.Submit("about")
	f.sh.Submit("help")
	assert.Equal(t, []string{"help", "about", "help"}, f.sh.Session().History())
	assert.Equal(t, 3, f.sh.Session().Cursor())
}

func TestSubmit_RawLineRecorded(t *testing.T) {
	f := newFixture(t)

	out := f.sh.Submit("  CD   hh25v3 ")
	assert.Equal(t, "cd", out.Command)
	assert.Contains(t, out.Result.Text, "Multimodal Chatbot")
	assert.Equal(t, []string{"  CD   hh25v3 "}, f.sh.Session().History())
}

func TestSubmit_UnknownCommand(t *testing.T) {
	f := newFixture(t)

	out := f.sh.Submit("Sudo rm -rf")
	assert.Equal(t, "Command not found: `sudo`. Type `help`.", out.Result.Text)
	assert.Equal(t, []string{"Sudo rm -rf"}, f.sh.Session().History())
}

func TestSubmit_CdWithoutArgument(t *testing.T) {
	f := newFixture(t)

	out := f.sh.Submit("cd")
	assert.Contains(t, out.Result.Text, "Usage: cd [projectname]")
	assert.Nil(t, out.Result.Navigate)
	assert.Nil(t, out.Result.Theme)
	assert.False(t, out.Result.Clear)
	assert.Equal(t, []string{"cd"}, f.sh.Session().History())
	_, ok, _ := f.store.Get(prefs.ThemeKey)
	assert.False(t, ok)
}

func TestSubmit_FaultBoundary(t *testing.T) {
	store := prefs.NewMemoryStore()
	logs := &bytes.Buffer{}
	ctx := commands.NewContext(session.New(), store, catalog.Default())
	ctx.Logger = log.New(logs, "", 0)

	reg := commands.NewRegistryWith(
		&commands.Command{Name: "boom", Handler: func(*commands.Context, []string) (commands.Result, error) {
			panic("kaboom")
		}},
		&commands.Command{Name: "fail", Handler: func(*commands.Context, []string) (commands.Result, error) {
			return commands.Text("partial"), errors.New("broken")
		}},
	)
	sh := New(reg, ctx)

	out := sh.Submit("BOOM now")
	assert.Equal(t, "Error executing command: boom", out.Result.Text)
	assert.Contains(t, logs.String(), "kaboom")

	out = sh.Submit("fail")
	assert.Equal(t, "Error executing command: fail", out.Result.Text)
	assert.Contains(t, logs.String(), "broken")

	// The session keeps working after a fault.
	assert.Equal(t, []string{"BOOM now", "fail"}, sh.Session().History())
}

func TestRecall_RoundTripRestoresPending(t *testing.T) {
	histories := [][]string{
		{},
		{"help"},
		{"help", "about"},
		{"help", "about", "projects", "cd hh25v3"},
	}

	for _, lines := range histories {
		for steps := 0; steps <= len(lines)+1; steps++ {
			f := newFixture(t)
			for _, l := range lines {
				f.sh.Submit(l)
			}
			start := f.sh.Session().Cursor()

			var shown string
			for n := 0; n < steps; n++ {
				f.sh.RecallPrevious("draft")
			}
			moved := start - f.sh.Session().Cursor()
			for n := 0; n < moved; n++ {
				shown, _ = f.sh.RecallNext()
			}

			assert.Equal(t, start, f.sh.Session().Cursor(), "history=%v steps=%d", lines, steps)
			if moved > 0 {
				assert.Equal(t, "draft", shown, "history=%v steps=%d", lines, steps)
			}
		}
	}
}

func TestRecall_Boundaries(t *testing.T) {
	f := newFixture(t)
	f.sh.Submit("help")
	f.sh.Submit("about")

	line, ok := f.sh.RecallPrevious("typed")
	require.True(t, ok)
	assert.Equal(t, "about", line)

	line, _ = f.sh.RecallPrevious("")
	assert.Equal(t, "help", line)

	_, ok = f.sh.RecallPrevious("")
	assert.False(t, ok, "oldest entry stays shown")

	f.sh.RecallNext()
	line, ok = f.sh.RecallNext()
	require.True(t, ok)
	assert.Equal(t, "typed", line)

	_, ok = f.sh.RecallNext()
	assert.False(t, ok)
}

func TestSubmit_ResetsBrowsing(t *testing.T) {
	f := newFixture(t)
	f.sh.Submit("help")
	f.sh.Submit("about")

	f.sh.RecallPrevious("")
	f.sh.RecallPrevious("")
	f.sh.Submit("help")

	assert.Equal(t, []string{"help", "about", "help"}, f.sh.Session().History())
	assert.Equal(t, 3, f.sh.Session().Cursor())
}

func TestGame_ThroughInterpreter(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "Start the game with `game` first.", f.sh.Submit("guess 3").Result.Text)
	_, playing := f.sh.Session().Secret()
	assert.False(t, playing)

	f.sh.Submit("game")
	assert.Equal(t, "Too low!", f.sh.Submit("guess 3").Result.Text)
	assert.Equal(t, "Enter a valid number (1-10).", f.sh.Submit("guess ten").Result.Text)
	assert.Contains(t, f.sh.Submit("guess 7").Result.Text, "Correct! It was 7.")
	assert.Equal(t, "Start the game with `game` first.", f.sh.Submit("guess 7").Result.Text)
}

func TestTheme_ThroughInterpreter(t *testing.T) {
	f := newFixture(t)

	f.sh.Submit("theme ubuntu")
	out := f.sh.Submit("theme nonexistent")
	assert.Contains(t, out.Result.Text, "not found")
	assert.Nil(t, out.Result.Theme)
	assert.Equal(t, "ubuntu", f.sh.StartupTheme().Name)

	f.sh.Submit("theme dark")
	v, ok, err := f.store.Get(prefs.ThemeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func TestNpm_ThroughInterpreter(t *testing.T) {
	f := newFixture(t)

	var navigations []string
	for _, line := range []string{"npm run dev", "npm run unknownproj"} {
		if nav := f.sh.Submit(line).Result.Navigate; nav != nil {
			navigations = append(navigations, nav.URL)
		}
	}
	assert.Equal(t, []string{"https://github.com/AceRider75"}, navigations)
}

func TestBanner(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Welcome to AceRider75's Terminal Portfolio. Type `help` to see available commands.", f.sh.Banner())
}

func TestNew_CreatesSessionWhenMissing(t *testing.T) {
	ctx := commands.NewContext(nil, prefs.NewMemoryStore(), catalog.Default())
	sh := New(commands.NewRegistry(), ctx)
	require.NotNil(t, sh.Session())
}

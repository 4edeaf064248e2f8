// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/prefs"
	"github.com/jeranaias/termfolio/internal/session"
)

// newTestContext returns a context whose random source always yields
// secret when a game starts.
func newTestContext(secret int) (*Context, *prefs.MemoryStore) {
	store := prefs.NewMemoryStore()
	ctx := NewContext(session.New(), store, catalog.Default())
	ctx.Rand = func(n int) int { return secret - session.GameMin }
	ctx.Logger = log.New(io.Discard, "", 0)
	return ctx, store
}

func run(t *testing.T, ctx *Context, line string) Result {
	t.Helper()
	fields := strings.Fields(line)
	cmd, ok := NewRegistry().Lookup(fields[0])
	require.True(t, ok, fields[0])
	res, err := cmd.Handler(ctx, fields[1:])
	require.NoError(t, err)
	return res
}

type failingStore struct{}

func (failingStore) Get(string) (string, bool, error) { return "", false, errors.New("boom") }
func (failingStore) Set(string, string) error { return errors.New("boom") }

func TestHelp(t *testing.T) {
	ctx, _ := newTestContext(1)
	res := run(t, ctx, "help")

	assert.True(t, strings.HasPrefix(res.Text, "Available commands:"))
	assert.Contains(t, res.Text, "- `about` : Display information about AceRider75")
	assert.Contains(t, res.Text, "- `cd [proj]` : Show details about a specific project")
	assert.Contains(t, res.Text, "`gruvbox-dark`")
	assert.Contains(t, res.Text, "`npm run [dev | proj]`")
	assert.NotContains(t, res.Text, "`help`", "help does not list itself")
}

func TestStaticText(t *testing.T) {
	ctx, _ := newTestContext(1)

	assert.Contains(t, run(t, ctx, "about").Text, "## About Me - AceRider75")
	assert.Contains(t, run(t, ctx, "about").Text, "Location: Jadavpur, West Bengal, India")
	assert.Contains(t, run(t, ctx, "skills").Text, "- Responsive Web Design")
	assert.Contains(t, run(t, ctx, "contact").Text,
		"Email: [mukherjeesubhrajit75@gmail.com](mailto:mukherjeesubhrajit75@gmail.com)")
	assert.Contains(t, run(t, ctx, "contact").Text, "GitHub: [github.com/AceRider75](https://github.com/AceRider75)")
}

func TestProjects_SortedByCategory(t *testing.T) {
	ctx, _ := newTestContext(1)
	text := run(t, ctx, "projects").Text

	mainAt := strings.Index(text, "## Main Projects")
	miniAt := strings.Index(text, "## Mini-Projects")
	require.True(t, mainAt >= 0 && miniAt > mainAt)

	var order []int
	for _, id := range []string{"hh25v2", "hh25v3", "paintv2.5", "LAWSUIT", "liar", "moodbeats", "moodfood", "shoot", "ytmon"} {
		order = append(order, strings.Index(text, "`"+id+"`"))
	}
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1], order[i])
	}
	assert.Less(t, order[2], miniAt)
	assert.Greater(t, order[3], miniAt)
}

func TestCd(t *testing.T) {
	ctx, _ := newTestContext(1)

	tests := []struct {
		line string
		want string
	}{
		{"cd", "Usage: cd [projectname]"},
		{"cd nope", "Error: Project \"`nope`\" not found."},
		{"cd lawsuit", "## LawSuite (April Fools) (Mini-Project)"},
		{"cd HH25V3", "## HH25v3 - Multimodal Chatbot (Main Project)"},
		{"cd hh25v3", "### Tech Stack:\n\nPython (Backend), HTML, CSS, JavaScript (Frontend)"},
		{"cd hh25v3", "GitHub: [https://github.com/AceRider75/hh25v3](https://github.com/AceRider75/hh25v3)"},
	}

	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			res := run(t, ctx, tc.line)
			assert.Contains(t, res.Text, tc.want)
			assert.Nil(t, res.Navigate)
			assert.Nil(t, res.Theme)
		})
	}
}

func TestTheme(t *testing.T) {
	ctx, store := newTestContext(1)

	res := run(t, ctx, "theme nonexistent")
	assert.Equal(t, "Theme \"`nonexistent`\" not found. Type `help`.", res.Text)
	assert.Nil(t, res.Theme)
	_, ok, _ := store.Get(prefs.ThemeKey)
	assert.False(t, ok)

	res = run(t, ctx, "theme dark")
	assert.Equal(t, "Theme switched to dark.", res.Text)
	require.NotNil(t, res.Theme)
	assert.Equal(t, "#0c0c0c", res.Theme.Background)
	v, ok, _ := store.Get(prefs.ThemeKey)
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	res = run(t, ctx, "theme Solarized-DARK")
	assert.Equal(t, "Theme switched to solarized-dark.", res.Text)
	run(t, ctx, "theme nonexistent")
	v, _, _ = store.Get(prefs.ThemeKey)
	assert.Equal(t, "solarized-dark", v, "unknown theme leaves the saved one")

	assert.Contains(t, run(t, ctx, "theme").Text, "Usage: theme [themename]")
}

func TestTheme_PersistFailureStillApplies(t *testing.T) {
	ctx, _ := newTestContext(1)
	ctx.Prefs = failingStore{}

	res := run(t, ctx, "theme light")
	require.NotNil(t, res.Theme)
	assert.Equal(t, "light", res.Theme.Name)
}

func TestStartupTheme(t *testing.T) {
	cat := catalog.Default()

	store := prefs.NewMemoryStore()
	assert.Equal(t, "dark", StartupTheme(cat, store).Name)

	require.NoError(t, store.Set(prefs.ThemeKey, "ubuntu"))
	assert.Equal(t, "ubuntu", StartupTheme(cat, store).Name)

	require.NoError(t, store.Set(prefs.ThemeKey, "deleted-theme"))
	assert.Equal(t, "dark", StartupTheme(cat, store).Name)

	assert.Equal(t, "dark", StartupTheme(cat, failingStore{}).Name)
	assert.Equal(t, "dark", StartupTheme(cat, nil).Name)
}

func TestClear(t *testing.T) {
	ctx, _ := newTestContext(1)
	res := run(t, ctx, "clear")
	assert.True(t, res.Clear)
	assert.Empty(t, res.Text)
}

func TestGuess_BeforeGame(t *testing.T) {
	ctx, _ := newTestContext(4)

	for _, line := range []string{"guess", "guess 4", "guess abc"} {
		res := run(t, ctx, line)
		assert.Equal(t, "Start the game with `game` first.", res.Text)
	}
	_, playing := ctx.Session.Secret()
	assert.False(t, playing)
}

func TestGame_Round(t *testing.T) {
	ctx, _ := newTestContext(4)

	res := run(t, ctx, "game")
	assert.Contains(t, res.Text, "between 1 and 10")
	secret, playing := ctx.Session.Secret()
	require.True(t, playing)
	require.Equal(t, 4, secret)

	tests := []struct {
		line string
		want string
	}{
		{"guess", "Enter a valid number (1-10)."},
		{"guess abc", "Enter a valid number (1-10)."},
		{"guess 4abc", "Enter a valid number (1-10)."},
		{"guess 4.5", "Enter a valid number (1-10)."},
		{"guess 0", "Enter a valid number (1-10)."},
		{"guess 11", "Enter a valid number (1-10)."},
		{"guess 2", "Too low!"},
		{"guess 9", "Too high!"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, run(t, ctx, tc.line).Text, tc.line)
		_, playing = ctx.Session.Secret()
		assert.True(t, playing, "%s must not end the round", tc.line)
	}

	res = run(t, ctx, "guess 4")
	assert.Equal(t, "Correct! It was 4. Game over. Type `game` to play again.", res.Text)
	assert.Equal(t, "Start the game with `game` first.", run(t, ctx, "guess 4").Text)
}

func TestGame_SecretBounds(t *testing.T) {
	for _, secret := range []int{session.GameMin, session.GameMax} {
		ctx, _ := newTestContext(secret)
		run(t, ctx, "game")
		got, _ := ctx.Session.Secret()
		assert.Equal(t, secret, got)
	}

	ctx, _ := newTestContext(1)
	ctx.Session = nil
	cmd, _ := NewRegistry().Lookup("game")
	_, err := cmd.Handler(ctx, nil)
	assert.Error(t, err)
}

func TestNpm(t *testing.T) {
	ctx, _ := newTestContext(1)

	res := run(t, ctx, "npm run dev")
	assert.Equal(t, "Executing... Redirecting to https://github.com/AceRider75", res.Text)
	require.NotNil(t, res.Navigate)
	assert.Equal(t, "https://github.com/AceRider75", res.Navigate.URL)
	assert.Equal(t, DefaultNavigationDelay, res.Navigate.Delay)

	res = run(t, ctx, "npm run LawSuit")
	require.NotNil(t, res.Navigate)
	assert.Equal(t, "https://github.com/AceRider75/lawsuite", res.Navigate.URL)

	tests := []struct {
		line string
		want string
	}{
		{"npm", "Usage: npm run [dev | projectname]"},
		{"npm start dev", "Usage: npm run [dev | projectname]"},
		{"npm RUN dev", "Usage: npm run [dev | projectname]"},
		{"npm run", "Usage: npm run [dev | projectname]\n\nType `projects`."},
		{"npm run unknownproj", "Error: Project \"`unknownproj`\" not found for 'npm run'.\n\nType `projects`."},
	}
	for _, tc := range tests {
		res := run(t, ctx, tc.line)
		assert.Equal(t, tc.want, res.Text, tc.line)
		assert.Nil(t, res.Navigate, tc.line)
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "`help`", Code("help"))
	assert.Equal(t, "``a`b``", Code("a`b"))
	assert.Equal(t, "`` `x ``", Code("`x"))
}

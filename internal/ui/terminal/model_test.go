// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/prefs"
	"github.com/jeranaias/termfolio/internal/session"
	"github.com/jeranaias/termfolio/internal/shell"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type navigation struct {
	url   string
	delay time.Duration
}

type fakeNavigator struct {
	calls []navigation
	err   error
}

func (f *fakeNavigator) Schedule(rawURL string, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, navigation{rawURL, delay})
	return nil
}

func newModel(t *testing.T, opts Options) Model {
	t.Helper()
	ctx := commands.NewContext(session.New(), prefs.NewMemoryStore(), catalog.Default())
	ctx.NavigationDelay = 100 * time.Millisecond
	ctx.Logger = log.New(io.Discard, "", 0)

	opts.Profile = termenv.Ascii
	if opts.WordWrap == 0 {
		opts.WordWrap = 120
	}
	return New(shell.New(commands.NewRegistry(), ctx), opts)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return nm, cmd
}

func press(t *testing.T, m Model, k tea.KeyType) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: k})
	return m
}

func submit(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.setInput(line)
	return press(t, m, tea.KeyEnter)
}

// finish drives the typing animation to its end.
func finish(t *testing.T, m Model) Model {
	t.Helper()
	for i := 0; m.typing != nil; i++ {
		require.Less(t, i, 100000, "typing never finished")
		m, _ = update(t, m, typeTickMsg{id: m.typing.id})
	}
	return m
}

func lastBlock(m Model) string {
	if len(m.blocks) == 0 {
		return ""
	}
	return m.blocks[len(m.blocks)-1]
}

// =============================================================================
// BANNER TESTS
// =============================================================================

func TestModel_BannerInstant(t *testing.T) {
	m := newModel(t, Options{})
	require.NotNil(t, m.Init())

	m, cmd := update(t, m, bannerMsg{})
	assert.Nil(t, cmd)
	assert.Contains(t, m.banner, "Welcome to AceRider75's Terminal Portfolio")
	assert.Nil(t, m.typing)

	banner := m.banner
	m, _ = update(t, m, bannerMsg{})
	assert.Equal(t, banner, m.banner, "banner is typed once")
}

func TestModel_BannerTyped(t *testing.T) {
	m := newModel(t, Options{BannerDelay: 30 * time.Millisecond})

	m, cmd := update(t, m, bannerMsg{})
	require.NotNil(t, cmd)
	require.NotNil(t, m.typing)
	assert.True(t, m.typing.banner)
	assert.Empty(t, m.banner)
	assert.Less(t, len(m.content()), len("Welcome to AceRider75's"))

	m = finish(t, m)
	assert.Contains(t, m.banner, "Welcome to AceRider75's Terminal Portfolio")
	assert.Empty(t, m.blocks)
}

func TestModel_StaleTickIgnored(t *testing.T) {
	m := newModel(t, Options{BannerDelay: 30 * time.Millisecond})
	m, _ = update(t, m, bannerMsg{})
	frame := m.typing.frame

	m, cmd := update(t, m, typeTickMsg{id: m.typing.id + 1})
	assert.Nil(t, cmd)
	assert.Equal(t, frame, m.typing.frame)
}

func TestNewTyping_Steps(t *testing.T) {
	tests := []struct {
		delay    time.Duration
		interval time.Duration
		steps    int
	}{
		{5 * time.Millisecond, minTick, 4},
		{16 * time.Millisecond, minTick, 1},
		{30 * time.Millisecond, 30 * time.Millisecond, 1},
		{time.Millisecond, minTick, 16},
	}
	for _, tt := range tests {
		ty := newTyping(1, "abc", tt.delay)
		assert.Equal(t, tt.interval, ty.interval, "delay %v", tt.delay)
		assert.Equal(t, tt.steps, ty.steps, "delay %v", tt.delay)
	}
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestModel_Submit(t *testing.T) {
	m := newModel(t, Options{})
	m = submit(t, m, "about")

	require.Len(t, m.blocks, 2)
	assert.Equal(t, "visitor@portfolio:~$ about", m.blocks[0])
	assert.Contains(t, m.blocks[1], "About Me - AceRider75")
	assert.Empty(t, m.input.Value())
}

func TestModel_SubmitBlankEchoesPrompt(t *testing.T) {
	m := newModel(t, Options{})
	m = submit(t, m, "")

	assert.Equal(t, []string{"visitor@portfolio:~$"}, m.blocks)
}

func TestModel_EnterIgnoredWhileTyping(t *testing.T) {
	m := newModel(t, Options{TypingDelay: 5 * time.Millisecond})
	m = submit(t, m, "about")
	require.NotNil(t, m.typing)
	require.Len(t, m.blocks, 1)

	m = submit(t, m, "skills")
	assert.Len(t, m.blocks, 1, "enter is ignored while typing")
	assert.Equal(t, "skills", m.input.Value(), "input is kept")

	m = finish(t, m)
	require.Len(t, m.blocks, 2)
	assert.Contains(t, m.blocks[1], "About Me")

	m = press(t, m, tea.KeyEnter)
	assert.Equal(t, "visitor@portfolio:~$ skills", m.blocks[2])
}

func TestModel_SkipTyping(t *testing.T) {
	m := newModel(t, Options{TypingDelay: 50 * time.Millisecond})
	m = submit(t, m, "about")
	require.NotNil(t, m.typing)

	m = press(t, m, tea.KeyEsc)
	assert.Nil(t, m.typing)
	assert.Contains(t, lastBlock(m), "About Me")
}

func TestModel_Recall(t *testing.T) {
	m := newModel(t, Options{})
	m = submit(t, m, "about")
	m = submit(t, m, "skills")

	m.setInput("draft")
	m = press(t, m, tea.KeyUp)
	assert.Equal(t, "skills", m.input.Value())
	m = press(t, m, tea.KeyUp)
	assert.Equal(t, "about", m.input.Value())
	m = press(t, m, tea.KeyUp)
	assert.Equal(t, "about", m.input.Value(), "oldest entry stays")
	m = press(t, m, tea.KeyDown)
	assert.Equal(t, "skills", m.input.Value())
	m = press(t, m, tea.KeyDown)
	assert.Equal(t, "draft", m.input.Value(), "pending input is restored")
}

func TestModel_Complete(t *testing.T) {
	m := newModel(t, Options{})

	m.setInput("he")
	m = press(t, m, tea.KeyTab)
	assert.Equal(t, "help ", m.input.Value())
	assert.Empty(t, m.blocks)

	m.setInput("theme solarized")
	m = press(t, m, tea.KeyTab)
	require.Len(t, m.blocks, 2)
	assert.Equal(t, "visitor@portfolio:~$ theme solarized", m.blocks[0])
	assert.Equal(t, "solarized-dark   solarized-light", m.blocks[1])
	assert.Equal(t, "theme solarized", m.input.Value())

	m.setInput("xyz")
	m = press(t, m, tea.KeyTab)
	assert.Len(t, m.blocks, 2, "no match shows nothing")
	assert.Equal(t, "xyz", m.input.Value())
}

func TestModel_ClearKeepsBanner(t *testing.T) {
	m := newModel(t, Options{})
	m, _ = update(t, m, bannerMsg{})
	m = submit(t, m, "about")
	m = submit(t, m, "skills")

	m = press(t, m, tea.KeyCtrlL)
	assert.Equal(t, []string{"visitor@portfolio:~$ clear"}, m.blocks)
	assert.Contains(t, m.banner, "Welcome to")
	assert.True(t, strings.HasPrefix(m.content(), m.banner))
}

func TestModel_ClearFinishesTyping(t *testing.T) {
	m := newModel(t, Options{BannerDelay: 30 * time.Millisecond})
	m, _ = update(t, m, bannerMsg{})
	require.NotNil(t, m.typing)

	m = press(t, m, tea.KeyCtrlL)
	assert.Nil(t, m.typing)
	assert.Contains(t, m.banner, "Welcome to")
	assert.Equal(t, []string{"visitor@portfolio:~$ clear"}, m.blocks)
}

func TestModel_ThemeSwitch(t *testing.T) {
	m := newModel(t, Options{})
	before := m.theme.Name

	m = submit(t, m, "theme light")
	assert.Equal(t, "light", m.theme.Name)
	assert.NotEqual(t, before, m.theme.Name)
	assert.Equal(t, "notty", m.theme.MarkdownStyle())

	m = submit(t, m, "theme nonexistent")
	assert.Equal(t, "light", m.theme.Name, "unknown theme keeps the current one")
}

// =============================================================================
// NAVIGATION TESTS
// =============================================================================

func TestModel_NavigateAfterText(t *testing.T) {
	nav := &fakeNavigator{}
	m := newModel(t, Options{TypingDelay: 5 * time.Millisecond, Navigator: nav})

	m = submit(t, m, "npm run dev")
	require.NotNil(t, m.typing)
	assert.Empty(t, nav.calls, "navigation waits for the text")

	m = finish(t, m)
	assert.Equal(t, []navigation{{"https://github.com/AceRider75", 100 * time.Millisecond}}, nav.calls)
	assert.Equal(t, "Opening https://github.com/AceRider75", m.notice)
}

func TestModel_NavigateInstant(t *testing.T) {
	nav := &fakeNavigator{}
	m := newModel(t, Options{Navigator: nav})

	m = submit(t, m, "npm run dev")
	assert.Len(t, nav.calls, 1)

	m = submit(t, m, "about")
	assert.Empty(t, m.notice, "a new submission clears the notice")
}

func TestModel_NavigateFailures(t *testing.T) {
	m := newModel(t, Options{})
	m = submit(t, m, "npm run dev")
	assert.Equal(t, "Open https://github.com/AceRider75", m.notice)
	assert.True(t, m.noticeOK)

	m = newModel(t, Options{Navigator: &fakeNavigator{err: errors.New("no browser")}})
	m = submit(t, m, "npm run dev")
	assert.Contains(t, m.notice, "no browser")
	assert.False(t, m.noticeOK)
}

// =============================================================================
// VIEW TESTS
// =============================================================================

func TestModel_View(t *testing.T) {
	m := newModel(t, Options{Title: "AceRider75's Terminal Portfolio"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, bannerMsg{})
	m = submit(t, m, "skills")

	view := m.View()
	assert.Contains(t, view, "AceRider75's Terminal Portfolio")
	assert.Contains(t, view, "visitor@portfolio:~$ skills")
	assert.Contains(t, view, "enter run")
	assert.Contains(t, view, m.theme.Name)
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := newModel(t, Options{})
	m, _ = update(t, m, bannerMsg{})
	assert.Contains(t, m.View(), "Welcome to")
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t, Options{})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/jeranaias/termfolio/internal/catalog"
	"github.com/jeranaias/termfolio/internal/commands"
	"github.com/jeranaias/termfolio/internal/render"
	"github.com/jeranaias/termfolio/internal/shell"
	"github.com/jeranaias/termfolio/internal/ui/styles"
	"github.com/jeranaias/termfolio/internal/util"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Navigator opens navigation URLs. *navigate.Scheduler implements it.
type Navigator interface {
	Schedule(rawURL string, delay time.Duration) error
}

// Options configures the terminal model.
type Options struct {
	// Title is shown in the header bar
	Title string

	// Prompt is shown before the input line
	Prompt string

	// BannerDelay and TypingDelay are per-character typing delays
	// (0 = instant)
	BannerDelay time.Duration
	TypingDelay time.Duration

	// WordWrap is the Markdown wrap width
	WordWrap int

	// Profile is the color profile styles are rendered with
	Profile termenv.Profile

	// Navigator opens URLs. Nil only reports them in the status bar.
	Navigator Navigator
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model of the terminal: a scrollback of echoed
// lines and typed output above a single input line.
type Model struct {
	interp *shell.Interpreter
	opts   Options
	keys   KeyMap

	theme *styles.Theme
	md    *render.Terminal

	input textinput.Model
	view  viewport.Model

	// banner is the fully typed welcome banner; blocks follow it
	banner string
	blocks []string
	typing *typing
	nextID int

	width  int
	height int
	ready  bool

	// notice is a one-line message in the status bar
	notice   string
	noticeOK bool

	quitting bool
}

// New creates a terminal model driving interp.
func New(interp *shell.Interpreter, opts Options) Model {
	if opts.Prompt == "" {
		opts.Prompt = "visitor@portfolio:~$"
	}
	if opts.Title == "" {
		opts.Title = "portfolio"
	}
	if opts.WordWrap <= 0 {
		opts.WordWrap = render.DefaultWordWrap
	}

	ti := textinput.New()
	ti.Prompt = opts.Prompt + " "
	ti.CharLimit = 512
	ti.Focus()

	m := Model{
		interp: interp,
		opts:   opts,
		keys:   DefaultKeyMap(),
		input:  ti,
		view:   viewport.New(opts.WordWrap, 20),
	}
	m.applyTheme(interp.StartupTheme())
	return m
}

// applyTheme restyles the input and later output for t.
func (m *Model) applyTheme(t catalog.Theme) {
	m.theme = styles.NewThemeWithProfile(t, m.opts.Profile)

	md, err := render.NewTerminal(m.theme.MarkdownStyle(), m.opts.WordWrap)
	if err != nil {
		md = render.NewPlain()
	}
	m.md = md

	m.input.PromptStyle = m.theme.Prompt
	m.input.TextStyle = m.theme.Input
	m.input.Cursor.Style = m.theme.Cursor
}

// Init types the welcome banner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startBanner())
}

// startBanner asks Update to type the banner. Init cannot keep state on
// its value receiver.
func (m Model) startBanner() tea.Cmd {
	return func() tea.Msg { return bannerMsg{} }
}

type bannerMsg struct{}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case bannerMsg:
		if m.banner != "" || m.typing != nil {
			return m, nil
		}
		return m, m.startTyping(m.md.Render(m.interp.Banner()), m.opts.BannerDelay, true)

	case typeTickMsg:
		if m.typing == nil || msg.id != m.typing.id {
			return m, nil
		}
		if !m.typing.advance() {
			m.finishTyping()
			return m, nil
		}
		m.refresh()
		return m, m.typing.tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// header, input line and status bar
	h := msg.Height - 3
	if h < 1 {
		h = 1
	}
	m.view.Width = msg.Width
	m.view.Height = h
	m.input.Width = msg.Width - util.StringWidth(m.input.Prompt) - 1
	m.ready = true
	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		if m.typing != nil {
			return m, nil
		}
		line := m.input.Value()
		m.input.Reset()
		return m, m.submit(line)

	case key.Matches(msg, m.keys.Clear):
		if m.typing != nil {
			m.finishTyping()
		}
		return m, m.submit("clear")

	case key.Matches(msg, m.keys.Skip):
		if m.typing != nil {
			m.finishTyping()
		}
		return m, nil

	case key.Matches(msg, m.keys.Previous):
		if line, ok := m.interp.RecallPrevious(m.input.Value()); ok {
			m.setInput(line)
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if line, ok := m.interp.RecallNext(); ok {
			m.setInput(line)
		}
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		if m.typing != nil {
			return m, nil
		}
		return m, m.complete()

	case key.Matches(msg, m.keys.PageUp):
		m.view.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.view.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setInput(line string) {
	m.input.SetValue(line)
	m.input.CursorEnd()
}

// submit interprets line and carries out its result: clear, echo, theme,
// typed text, then navigation once the text is shown.
func (m *Model) submit(line string) tea.Cmd {
	out := m.interp.Submit(line)
	res := out.Result
	m.notice = ""

	if res.Clear {
		m.blocks = nil
	}
	m.blocks = append(m.blocks, m.theme.PromptLine(m.opts.Prompt, out.Echo))
	if res.Theme != nil {
		m.applyTheme(*res.Theme)
	}

	cmd := m.startTyping(m.md.Render(res.Text), m.opts.TypingDelay, false)
	if res.Navigate != nil {
		if m.typing != nil {
			m.typing.navigate = res.Navigate
		} else {
			m.navigate(res.Navigate)
		}
	}
	return cmd
}

// complete applies tab completion to the input line.
func (m *Model) complete() tea.Cmd {
	current := m.input.Value()
	comp := m.interp.Complete(current)
	if comp.Completed() {
		m.setInput(comp.Input)
		return nil
	}
	listing := comp.Listing()
	if listing == "" {
		return nil
	}
	m.blocks = append(m.blocks, m.theme.PromptLine(m.opts.Prompt, current))
	return m.startTyping(m.theme.Listing.Render(listing), m.opts.TypingDelay, false)
}

func (m *Model) navigate(nav *commands.Navigation) {
	if m.opts.Navigator == nil {
		m.setNotice(fmt.Sprintf("Open %s", nav.URL), true)
		return
	}
	if err := m.opts.Navigator.Schedule(nav.URL, nav.Delay); err != nil {
		m.setNotice(fmt.Sprintf("Cannot open %s: %v", nav.URL, err), false)
		return
	}
	m.setNotice(fmt.Sprintf("Opening %s", nav.URL), true)
}

func (m *Model) setNotice(s string, ok bool) {
	m.notice = s
	m.noticeOK = ok
}

// =============================================================================
// TYPING
// =============================================================================

// startTyping types text as a new block, or as the banner. Empty text
// adds nothing and a zero delay shows the text at once.
func (m *Model) startTyping(text string, delay time.Duration, banner bool) tea.Cmd {
	if text == "" {
		m.refresh()
		return nil
	}
	if delay <= 0 {
		m.show(text, banner)
		m.refresh()
		return nil
	}

	m.nextID++
	m.typing = newTyping(m.nextID, text, delay)
	m.typing.banner = banner
	m.typing.advance()
	m.refresh()
	return m.typing.tick()
}

// finishTyping shows the rest of the current block at once.
func (m *Model) finishTyping() {
	t := m.typing
	m.typing = nil
	m.show(t.tw.Finish(), t.banner)
	if t.navigate != nil {
		m.navigate(t.navigate)
	}
	m.refresh()
}

func (m *Model) show(text string, banner bool) {
	if banner {
		m.banner = text
		return
	}
	m.blocks = append(m.blocks, text)
}

// =============================================================================
// VIEW
// =============================================================================

// content returns the scrollback: banner, blocks, then the block being
// typed.
func (m *Model) content() string {
	parts := make([]string, 0, len(m.blocks)+2)
	if m.banner != "" {
		parts = append(parts, m.banner)
	}
	if m.typing != nil && m.typing.banner {
		parts = append(parts, m.typing.frame)
	}
	parts = append(parts, m.blocks...)
	if m.typing != nil && !m.typing.banner {
		parts = append(parts, m.typing.frame)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) refresh() {
	m.view.SetContent(m.content())
	m.view.GotoBottom()
}

// View renders the terminal.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.content() + "\n" + m.input.View()
	}

	return strings.Join([]string{
		m.header(),
		m.view.View(),
		m.input.View(),
		m.statusBar(),
	}, "\n")
}

func (m Model) header() string {
	dots := m.theme.HeaderDots.Render("● ● ●")
	title := m.theme.HeaderTitle.Render(util.TruncateWidth(m.opts.Title, max(m.width-10, 1)))
	return m.theme.Header.Width(max(m.width, 1)).Render(dots + "  " + title)
}

// statusBar shows the key help, or the latest notice, and the theme name.
func (m Model) statusBar() string {
	width := max(m.width-2, 1)
	right := m.theme.Name

	var left string
	switch {
	case m.notice != "":
		left = m.notice
	default:
		var help []string
		for _, b := range m.keys.ShortHelp() {
			h := b.Help()
			help = append(help, h.Key+" "+h.Desc)
		}
		left = strings.Join(help, " · ")
	}

	leftWidth := width - util.StringWidth(right) - 1
	if leftWidth < 1 {
		return m.theme.StatusBar.Render(util.FitWidth(left, width))
	}

	leftStyle := m.theme.StatusValue
	if m.notice != "" && !m.noticeOK {
		leftStyle = m.theme.Error.Inherit(m.theme.StatusValue)
	}
	return m.theme.StatusBar.Render(
		leftStyle.Render(util.FitWidth(left, leftWidth)) + " " + m.theme.StatusKey.Render(right))
}

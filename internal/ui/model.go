// Package ui is the single consumer of shared state: a bubbletea program
// that shows the searchable history while the visibility flag is set.
//
// The model never trusts wake signals alone. It re-reads the flag on every
// tick of a short poll interval, and on every wake, and every message from
// the program surface. Whatever the source, one refresh reads the flag once
// and acts on the transition.
package ui

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"go.klb.dev/clipdeck/internal/clip"
	"go.klb.dev/clipdeck/internal/config"
	"go.klb.dev/clipdeck/internal/history"
	"go.klb.dev/clipdeck/internal/rank"
	"go.klb.dev/clipdeck/internal/state"
)

// DefaultPoll bounds how long a toggle can go unnoticed.
const DefaultPoll = 100 * time.Millisecond

const previewRunes = 80

// Coordinator is the view of state.Coordinator the consumer needs.
type Coordinator interface {
	Snapshot() []history.Entry
	Visible() bool
	SetVisible(v bool)
	Toggle(src state.Source) bool
	Pointer() state.Point
}

// Options configures a Model.
type Options struct {
	// Poll is the fallback re-check period. Zero means DefaultPoll.
	Poll time.Duration
	// Wakeups carries wake signals from producers. May be nil.
	Wakeups <-chan struct{}
	// Cols and Rows size the view in cells. Zero means 50x31.
	Cols, Rows int
}

type (
	tickMsg time.Time
	wakeMsg struct{}
	showMsg struct{ at state.Point }
	hideMsg struct{}
)

// Model is the bubbletea model.
type Model struct {
	coord   Coordinator
	clip    clip.Backend
	wakeups <-chan struct{}
	poll    time.Duration
	keys    keyMap

	input    textinput.Model
	results  []rank.Result
	selected int
	offset   int // first visible result row

	visible      bool
	anchor       state.Point
	cols, rows   int
	termW, termH int
	status       string
}

// New builds the consumer model.
func New(coord Coordinator, backend clip.Backend, opts Options) Model {
	if opts.Poll <= 0 {
		opts.Poll = DefaultPoll
	}
	if opts.Cols <= 0 || opts.Rows <= 0 {
		opts.Cols, opts.Rows = config.Default().Cells()
	}

	in := textinput.New()
	in.Prompt = "❯ "
	in.PromptStyle = promptStyle
	in.Placeholder = "type to search"

	return Model{
		coord:   coord,
		clip:    backend,
		wakeups: opts.Wakeups,
		poll:    opts.Poll,
		keys:    defaultKeys,
		input:   in,
		cols:    opts.Cols,
		rows:    opts.Rows,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), waitForWake(m.wakeups))
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// waitForWake blocks on the wake channel. The Update loop re-arms it after
// every delivery, so at most one wait is outstanding.
func waitForWake(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		<-ch
		return wakeMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		cmd := m.refresh()
		return m, tea.Batch(cmd, m.tick())

	case wakeMsg:
		cmd := m.refresh()
		return m, tea.Batch(cmd, waitForWake(m.wakeups))

	case showMsg:
		m.anchor = msg.at
		return m, m.refresh()

	case hideMsg:
		return m, m.refresh()

	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	if m.visible {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.coord.Toggle(state.SourceUI)
		return m, m.refresh()
	}
	if !m.visible {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		m.scroll()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.selected+1 < len(m.results) {
			m.selected++
		}
		m.scroll()
		return m, nil
	case key.Matches(msg, m.keys.Select):
		return m.choose()
	case key.Matches(msg, m.keys.Hide):
		m.coord.SetVisible(false)
		return m, m.refresh()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.rank()
	return m, cmd
}

// handleMouse copies the row under a left click. The wheel moves the
// selection like up and down.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	switch {
	case msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft:
		i, ok := m.rowAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.selected = i
		return m.choose()
	case msg.Button == tea.MouseButtonWheelUp && m.selected > 0:
		m.selected--
		m.scroll()
	case msg.Button == tea.MouseButtonWheelDown && m.selected+1 < len(m.results):
		m.selected++
		m.scroll()
	}
	return m, nil
}

// rowAt maps a terminal cell to a result index. Result rows start below the
// top border, the input line and the divider.
func (m Model) rowAt(x, y int) (int, bool) {
	cols, _ := m.size()
	h := m.listHeight()
	ox, oy := m.origin(cols, h+5)
	if x <= ox || x >= ox+cols-1 {
		return 0, false
	}
	row := y - oy - 3
	if row < 0 || row >= h {
		return 0, false
	}
	i := m.offset + row
	if i >= len(m.results) {
		return 0, false
	}
	return i, true
}

// choose copies the selected entry to the clipboard and hides the view.
func (m Model) choose() (tea.Model, tea.Cmd) {
	if m.selected >= len(m.results) {
		return m, nil
	}
	entry := m.results[m.selected].Entry
	if err := m.clip.WriteText(entry.Content); err != nil {
		slog.Error("clipboard write failed", "id", entry.ID, "err", err)
		m.status = "copy failed: " + err.Error()
		return m, nil
	}
	slog.Debug("entry selected", "id", entry.ID)
	m.coord.SetVisible(false)
	return m, m.refresh()
}

// refresh reads the visibility flag once and reacts to it.
func (m *Model) refresh() tea.Cmd {
	v := m.coord.Visible()

	switch {
	case !v && m.visible:
		m.visible = false
		m.reset()
		m.anchor = state.Point{}
		m.input.Blur()
		return tea.ExitAltScreen
	case !v:
		// A show message that lost the race with a hide leaves an anchor
		// behind; the next reveal must read the pointer again.
		m.anchor = state.Point{}
		return nil
	case !m.visible:
		m.visible = true
		m.reset()
		if m.anchor == (state.Point{}) {
			m.anchor = m.coord.Pointer()
		}
		focus := m.input.Focus()
		m.rank()
		return tea.Batch(tea.EnterAltScreen, focus)
	}

	m.rank()
	return nil
}

// rank recomputes results from a fresh snapshot and clamps the selection.
func (m *Model) rank() {
	m.results = rank.Search(m.input.Value(), m.coord.Snapshot())
	if m.selected >= len(m.results) {
		m.selected = max(len(m.results)-1, 0)
	}
	m.scroll()
}

func (m *Model) reset() {
	m.input.Reset()
	m.results = nil
	m.selected = 0
	m.offset = 0
	m.status = ""
}

func (m *Model) scroll() {
	h := m.listHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+h {
		m.offset = m.selected - h + 1
	}
}

// size returns the box size in cells, shrunk to fit the terminal.
func (m Model) size() (cols, rows int) {
	cols, rows = m.cols, m.rows
	if m.termW > 0 {
		cols = min(cols, m.termW)
	}
	if m.termH > 0 {
		rows = min(rows, m.termH)
	}
	return max(cols, 8), max(rows, 6)
}

// listHeight is the number of result rows: the box minus its border, the
// input line, the divider and the footer.
func (m Model) listHeight() int {
	_, rows := m.size()
	return max(rows-5, 1)
}

func (m Model) View() string {
	if !m.visible {
		return dimStyle.Render("clipdeck is running. Double-tap Ctrl or press ctrl+t to search, ctrl+c to quit.") + "\n"
	}

	cols, _ := m.size()
	inner := cols - 2
	m.input.Width = max(inner-runewidth.StringWidth(m.input.Prompt)-1, 1)

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", inner)))
	b.WriteString("\n")

	h := m.listHeight()
	end := min(m.offset+h, len(m.results))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.results[i], i == m.selected, inner))
		b.WriteString("\n")
	}
	for i := end - m.offset; i < h; i++ {
		b.WriteString("\n")
	}

	switch {
	case m.status != "":
		b.WriteString(errorStyle.Render(truncate(m.status, inner)))
	case len(m.results) == 0 && m.input.Value() != "":
		b.WriteString(dimStyle.Render("no matches"))
	default:
		b.WriteString(dimStyle.Render(truncate(footer(len(m.results)), inner)))
	}

	box := boxStyle.Width(inner).Render(b.String())
	return m.place(box)
}

func footer(n int) string {
	word := "entries"
	if n == 1 {
		word = "entry"
	}
	return strconv.Itoa(n) + " " + word + " · enter copy · esc hide"
}

// renderRow draws one result with matched characters highlighted.
func (m Model) renderRow(r rank.Result, selected bool, width int) string {
	prefix := "  "
	if selected {
		prefix = promptStyle.Render("▌ ")
	}
	text := truncate(history.Preview(r.Entry.Content, previewRunes), width-2)

	matched := make(map[int]struct{}, len(r.Matched))
	for _, i := range r.Matched {
		matched[i] = struct{}{}
	}

	base := lipgloss.NewStyle()
	if selected {
		base = selectedStyle
	}

	var b strings.Builder
	b.WriteString(prefix)
	var run strings.Builder
	runHit := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runHit {
			b.WriteString(matchStyle.Inherit(base).Render(run.String()))
		} else {
			b.WriteString(base.Render(run.String()))
		}
		run.Reset()
	}
	// Preview keeps byte offsets for the runes it retains, so match
	// indexes into the full content line up.
	for i, ch := range text {
		_, hit := matched[i]
		if hit != runHit {
			flush()
			runHit = hit
		}
		run.WriteRune(ch)
	}
	flush()
	return b.String()
}

// place offsets the box toward the pointer position recorded when the view
// was revealed, keeping it inside the terminal.
func (m Model) place(box string) string {
	x, y := m.origin(lipgloss.Width(box), lipgloss.Height(box))
	if x == 0 && y == 0 {
		return box
	}
	return lipgloss.NewStyle().MarginLeft(x).MarginTop(y).Render(box)
}

// origin is the top-left cell of a w by h box. Without a known terminal
// size the box sits at 0,0.
func (m Model) origin(w, h int) (x, y int) {
	if m.termW <= 0 || m.termH <= 0 {
		return 0, 0
	}
	x = clamp(m.anchor.X/config.CellWidth, 0, m.termW-w)
	y = clamp(m.anchor.Y/config.CellHeight, 0, m.termH-h)
	return x, y
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

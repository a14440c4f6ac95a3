package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/core/window"
	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/term"
)

// statusHeight is the number of rows below the canvas.
const statusHeight = 2

var (
	statusStyle = lipgloss.NewStyle().Foreground(colorGray)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// Key Bindings
// =============================================================================

type browseKeys struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

func defaultBrowseKeys() browseKeys {
	return browseKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", " ", "f"),
			key.WithHelp("pgdn", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.PageDown, k.PageUp, k.Top, k.Bottom, k.Quit}
}

func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// =============================================================================
// Messages
// =============================================================================

// startedMsg reports the end of the first layout and scroll pass.
type startedMsg struct{ err error }

// changedMsg reports that the canvas needs repainting.
type changedMsg struct{}

// errMsg carries a non-fatal window error such as a failed page load.
type errMsg struct{ err error }

// =============================================================================
// browseModel - Window manager host
// =============================================================================

// browseModel hosts a window manager over a term.Canvas. The canvas is
// created on the first WindowSizeMsg, when the terminal size is known.
type browseModel struct {
	ctx    context.Context
	pager  *feed.Pager
	label  string
	opts   browseOptions
	logger *log.Logger

	keys browseKeys
	help help.Model

	canvas  *term.Canvas
	manager *window.Manager[feed.Item]
	errs    chan error

	ready   bool
	lastErr error
	err     error
	stats   window.Stats
}

func newBrowseModel(ctx context.Context, pager *feed.Pager, label string, opts browseOptions, logger *log.Logger) *browseModel {
	return &browseModel{
		ctx:    ctx,
		pager:  pager,
		label:  label,
		opts:   opts,
		logger: logger,
		keys:   defaultBrowseKeys(),
		help:   help.New(),
		errs:   make(chan error, 8),
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		height := max(msg.Height-statusHeight, 1)
		if m.canvas == nil {
			return m, m.start(msg.Width, height)
		}
		m.canvas.Resize(msg.Width, height)
		return m, nil

	case startedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.ready = true
		return m, m.waitEvent()

	case changedMsg:
		return m, m.waitEvent()

	case errMsg:
		m.lastErr = msg.err
		return m, m.waitEvent()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *browseModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if !m.ready {
		return nil
	}
	page := m.canvas.Height()
	switch {
	case key.Matches(msg, m.keys.Down):
		m.canvas.ScrollBy(1)
	case key.Matches(msg, m.keys.Up):
		m.canvas.ScrollBy(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.canvas.ScrollBy(page)
	case key.Matches(msg, m.keys.PageUp):
		m.canvas.ScrollBy(-page)
	case key.Matches(msg, m.keys.Top):
		m.canvas.ScrollTo(0)
	case key.Matches(msg, m.keys.Bottom):
		m.canvas.ScrollTo(m.canvas.ContentHeight())
	}
	return nil
}

// start creates the canvas and manager synchronously and runs Initialize,
// which may wait on the first page, as a command.
func (m *browseModel) start(width, height int) tea.Cmd {
	m.canvas = term.NewCanvas(width, height)

	buffer := m.opts.buffer
	if buffer == 0 {
		buffer = height
	}
	manager, err := window.New(window.Config[feed.Item]{
		Container:        m.canvas,
		Columns:          m.opts.columns,
		Gap:              m.opts.gap,
		ViewportSize:     height,
		ItemSource:       m.pager.Next,
		Buffer:           buffer,
		BottomBuffer:     height,
		Overscan:         m.opts.overscan,
		MaxPoolSize:      m.opts.poolSize,
		Render:           term.Render,
		Measure:          term.NewMeasurer(),
		LoadMore:         m.pager.Next,
		VisibilityMarker: term.MarkerInView,
		Logger:           m.logger,
		OnError: func(err error) {
			select {
			case m.errs <- err:
			default:
			}
		},
	})
	if err != nil {
		return func() tea.Msg { return startedMsg{err: err} }
	}
	m.manager = manager

	ctx := m.ctx
	return func() tea.Msg {
		return startedMsg{err: manager.Initialize(ctx)}
	}
}

// waitEvent blocks until the canvas changes or the manager reports an
// error. Exactly one waitEvent is pending while the view is running.
func (m *browseModel) waitEvent() tea.Cmd {
	canvas, errs, done := m.canvas, m.errs, m.ctx.Done()
	return func() tea.Msg {
		select {
		case <-canvas.Changed():
			return changedMsg{}
		case err := <-errs:
			return errMsg{err: err}
		case <-done:
			return nil
		}
	}
}

// close stops the manager and keeps its final stats.
func (m *browseModel) close() {
	if m.manager == nil {
		return
	}
	m.stats = m.manager.Stats()
	if err := m.manager.Close(); err != nil {
		m.logger.Warn("close window", "err", err)
	}
}

func (m *browseModel) View() string {
	if m.canvas == nil || !m.ready {
		return statusStyle.Render(fmt.Sprintf("Loading %s...", m.label))
	}
	var b strings.Builder
	b.WriteString(m.canvas.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *browseModel) statusLine() string {
	s := m.manager.Stats()
	parts := []string{
		m.label,
		fmt.Sprintf("%d items", s.Items),
		fmt.Sprintf("%d mounted", s.Active),
		fmt.Sprintf("%d parked", s.Pooled),
		fmt.Sprintf("row %d/%d", m.canvas.ScrollOffset(), s.TotalHeight),
	}
	if s.Loading {
		parts = append(parts, "loading...")
	} else if m.pager.Done() {
		parts = append(parts, "end of feed")
	}
	line := statusStyle.Render(strings.Join(parts, " · "))
	if m.lastErr != nil {
		line += "  " + errorStyle.Render(iconError+" "+m.lastErr.Error())
	}
	return line
}

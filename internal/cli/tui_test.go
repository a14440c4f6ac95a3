package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/core/window"
	"github.com/matzehuels/waterfall/pkg/feed"
)

func newTestBrowseModel(t *testing.T, limit int) *browseModel {
	t.Helper()
	src := feed.Generator{Seed: 1, Limit: limit}
	opts := browseOptions{columns: 3, gap: 1, poolSize: window.DefaultMaxPoolSize}
	m := newBrowseModel(context.Background(), feed.NewPager(src, 0, 20), "test feed", opts, log.New(io.Discard))
	t.Cleanup(m.close)
	return m
}

// startModel sends the first window size and runs the start command.
func startModel(t *testing.T, m *browseModel, width, height int) {
	t.Helper()
	_, cmd := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	if cmd == nil {
		t.Fatal("first WindowSizeMsg should start the manager")
	}
	msg, ok := cmd().(startedMsg)
	if !ok {
		t.Fatalf("start command returned %T, want startedMsg", msg)
	}
	if msg.err != nil {
		t.Fatalf("start error = %v", msg.err)
	}
	m.Update(msg)
	if !m.ready {
		t.Fatal("model should be ready after startedMsg")
	}
}

func TestBrowseModelStarts(t *testing.T) {
	m := newTestBrowseModel(t, 0)
	if got := m.View(); !strings.Contains(got, "Loading test feed") {
		t.Errorf("View() before start = %q", got)
	}

	startModel(t, m, 62, 22)

	if h := m.canvas.Height(); h != 22-statusHeight {
		t.Errorf("canvas height = %d, want %d", h, 22-statusHeight)
	}
	if len(m.canvas.Mounted()) == 0 {
		t.Error("no cards mounted after start")
	}
	view := m.View()
	if !strings.Contains(view, "test feed") || !strings.Contains(view, "mounted") {
		t.Errorf("status line missing from view:\n%s", view)
	}
	if got := strings.Count(view, "\n") + 1; got < 22 {
		t.Errorf("view has %d rows, want at least 22", got)
	}
}

func TestBrowseModelWaitsForCanvas(t *testing.T) {
	m := newTestBrowseModel(t, 0)
	startModel(t, m, 62, 22)

	// The first pass mounted cards, so a change is already pending.
	_, cmd := m.Update(startedMsg{})
	if _, ok := cmd().(changedMsg); !ok {
		t.Error("waitEvent should report the pending canvas change")
	}
}

func TestBrowseModelScrollLoadsMore(t *testing.T) {
	m := newTestBrowseModel(t, 0)
	startModel(t, m, 62, 22)

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m.manager.Wait()

	if got := m.canvas.ScrollOffset(); got == 0 {
		t.Error("end key should scroll the canvas")
	}
	if s := m.manager.Stats(); s.Items <= 20 {
		t.Errorf("Items = %d after scrolling to the end, want more than the first page", s.Items)
	}
}

func TestBrowseModelEndOfFeed(t *testing.T) {
	m := newTestBrowseModel(t, 12)
	startModel(t, m, 62, 22)
	m.manager.Wait()

	if !m.pager.Done() {
		t.Fatal("pager should be done after a short first page")
	}
	if got := m.View(); !strings.Contains(got, "end of feed") {
		t.Errorf("status line should report the end of the feed:\n%s", got)
	}
}

func TestBrowseModelKeys(t *testing.T) {
	m := newTestBrowseModel(t, 0)

	// Keys other than quit are ignored until the manager is ready.
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyPgDown}); cmd != nil {
		t.Error("scroll key before start should be ignored")
	}

	startModel(t, m, 62, 22)
	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	if got := m.canvas.ScrollOffset(); got != 20 {
		t.Errorf("offset after pgdown = %d, want 20", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	if got := m.canvas.ScrollOffset(); got != 19 {
		t.Errorf("offset after k = %d, want 19", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyHome})
	if got := m.canvas.ScrollOffset(); got != 0 {
		t.Errorf("offset after home = %d, want 0", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestBrowseModelResize(t *testing.T) {
	m := newTestBrowseModel(t, 0)
	startModel(t, m, 62, 22)

	m.Update(tea.WindowSizeMsg{Width: 92, Height: 30})
	if m.canvas.Width() != 92 || m.canvas.Height() != 28 {
		t.Errorf("canvas = %dx%d, want 92x28", m.canvas.Width(), m.canvas.Height())
	}
}

func TestBrowseModelReportsErrors(t *testing.T) {
	m := newTestBrowseModel(t, 0)
	startModel(t, m, 62, 22)

	m.Update(errMsg{err: io.ErrUnexpectedEOF})
	if got := m.View(); !strings.Contains(got, io.ErrUnexpectedEOF.Error()) {
		t.Errorf("view should show the last error:\n%s", got)
	}
}

package term

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/core/window"
)

// Painter is implemented by handles the canvas can draw.
type Painter interface {
	Lines(width int) []string
}

type mounted struct {
	h window.Handle
	p masonry.Placement
}

// Canvas is a terminal viewport implementing window.Container. It is safe
// for concurrent use. Scroll and resize notifications are delivered after
// the canvas lock is released, so they may call into the window manager.
type Canvas struct {
	mu       sync.Mutex
	width    int
	height   int
	offset   int
	content  int
	items    map[int]mounted
	onScroll func()
	onResize func()
	changed  chan struct{}
}

// NewCanvas returns a canvas width cells wide showing height rows.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:   max(width, 0),
		height:  max(height, 0),
		items:   make(map[int]mounted),
		changed: make(chan struct{}, 1),
	}
}

// Width implements window.Container.
func (c *Canvas) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

// Height returns the number of visible rows.
func (c *Canvas) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// ScrollOffset implements window.Container.
func (c *Canvas) ScrollOffset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// ContentHeight returns the scrollable extent last set by the manager.
func (c *Canvas) ContentHeight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// SetContentHeight implements window.Container.
func (c *Canvas) SetContentHeight(h int) {
	c.mu.Lock()
	c.content = max(h, 0)
	c.offset = min(c.offset, c.maxOffsetLocked())
	c.mu.Unlock()
	c.notify()
}

// Mount implements window.Container.
func (c *Canvas) Mount(index int, h window.Handle, p masonry.Placement) {
	c.mu.Lock()
	c.items[index] = mounted{h: h, p: p}
	c.mu.Unlock()
	c.notify()
}

// Unmount implements window.Container.
func (c *Canvas) Unmount(index int, h window.Handle) {
	c.mu.Lock()
	if m, ok := c.items[index]; ok && m.h == h {
		delete(c.items, index)
	}
	c.mu.Unlock()
	c.notify()
}

// Observe implements window.Container.
func (c *Canvas) Observe(onScroll, onResize func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onScroll, c.onResize = onScroll, onResize
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.onScroll, c.onResize = nil, nil
	}
}

// Changed signals after the mounted set or content height changed. The
// channel is buffered, so a burst of changes coalesces into one signal.
func (c *Canvas) Changed() <-chan struct{} {
	return c.changed
}

func (c *Canvas) notify() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

func (c *Canvas) maxOffsetLocked() int {
	return max(c.content-c.height, 0)
}

// ScrollBy moves the viewport by delta rows, clamped to the content, and
// reports whether it moved.
func (c *Canvas) ScrollBy(delta int) bool {
	c.mu.Lock()
	y := c.offset + delta
	c.mu.Unlock()
	return c.ScrollTo(y)
}

// ScrollTo moves the viewport to row y, clamped to the content, and
// reports whether it moved.
func (c *Canvas) ScrollTo(y int) bool {
	c.mu.Lock()
	y = max(0, min(y, c.maxOffsetLocked()))
	moved := y != c.offset
	c.offset = y
	fn := c.onScroll
	c.mu.Unlock()

	if moved && fn != nil {
		fn()
	}
	return moved
}

// Resize changes the viewport size. A width change is reported to the
// resize subscriber.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	widthChanged := width != c.width
	c.width = max(width, 0)
	c.height = max(height, 0)
	c.offset = min(c.offset, c.maxOffsetLocked())
	fn := c.onResize
	c.mu.Unlock()

	if widthChanged && fn != nil {
		fn()
	}
	c.notify()
}

// Mounted returns the mounted item indices in ascending order.
func (c *Canvas) Mounted() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, 0, len(c.items))
	for i := range c.items {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// Placement returns where item index is mounted.
func (c *Canvas) Placement(index int) (masonry.Placement, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.items[index]
	return m.p, ok
}

type segment struct {
	x    int
	text string
}

// View paints the visible rows. Cards never overlap horizontally within a
// row because each masonry column owns a disjoint x range.
func (c *Canvas) View() string {
	c.mu.Lock()
	height, offset := c.height, c.offset
	items := make([]mounted, 0, len(c.items))
	for _, m := range c.items {
		items = append(items, m)
	}
	c.mu.Unlock()

	rows := make([][]segment, height)
	for _, m := range items {
		p, ok := m.h.(Painter)
		if !ok {
			continue
		}
		top := m.p.Y - offset
		if top >= height || top+m.p.Height <= 0 {
			continue
		}
		for j, line := range p.Lines(m.p.Width) {
			if y := top + j; y >= 0 && y < height {
				rows[y] = append(rows[y], segment{x: m.p.X, text: line})
			}
		}
	}

	var b strings.Builder
	for y, segs := range rows {
		if y > 0 {
			b.WriteByte('\n')
		}
		slices.SortFunc(segs, func(a, b segment) int { return cmp.Compare(a.x, b.x) })
		cursor := 0
		for _, s := range segs {
			if s.x > cursor {
				b.WriteString(strings.Repeat(" ", s.x-cursor))
				cursor = s.x
			}
			b.WriteString(s.text)
			cursor += lipgloss.Width(s.text)
		}
	}
	return b.String()
}

var _ window.Container = (*Canvas)(nil)

package window

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/core/pacing"
)

type fakeHandle struct {
	index int

	mu       sync.Mutex
	released int
	markers  map[string]bool
}

func (h *fakeHandle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released++
}

func (h *fakeHandle) SetMarker(name string, on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.markers == nil {
		h.markers = make(map[string]bool)
	}
	h.markers[name] = on
}

func (h *fakeHandle) marked(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.markers[name]
}

func (h *fakeHandle) releases() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

type fakeContainer struct {
	mu       sync.Mutex
	width    int
	offset   int
	height   int
	mounted  map[int]Handle
	places   map[int]masonry.Placement
	mounts   int
	unmounts int
	onScroll func()
	onResize func()
	detached bool
}

func newFakeContainer(width int) *fakeContainer {
	return &fakeContainer{
		width:   width,
		mounted: make(map[int]Handle),
		places:  make(map[int]masonry.Placement),
	}
}

func (c *fakeContainer) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

func (c *fakeContainer) ScrollOffset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

func (c *fakeContainer) SetContentHeight(h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height = h
}

func (c *fakeContainer) Mount(i int, h Handle, p masonry.Placement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mounted[i] = h
	c.places[i] = p
	c.mounts++
}

func (c *fakeContainer) Unmount(i int, h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted[i] != h {
		panic("unmount of a handle that is not mounted")
	}
	delete(c.mounted, i)
	delete(c.places, i)
	c.unmounts++
}

func (c *fakeContainer) Observe(onScroll, onResize func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onScroll, c.onResize = onScroll, onResize
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.detached = true
		c.onScroll, c.onResize = nil, nil
	}
}

func (c *fakeContainer) scrollTo(y int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = y
}

func (c *fakeContainer) resize(w int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = w
}

func (c *fakeContainer) snapshot() (mounted map[int]Handle, mounts, unmounts, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mounted = make(map[int]Handle, len(c.mounted))
	for k, v := range c.mounted {
		mounted[k] = v
	}
	return mounted, c.mounts, c.unmounts, c.height
}

func (c *fakeContainer) placement(i int) masonry.Placement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.places[i]
}

type card struct {
	id     int
	height int
}

// cards returns n cards of height h with ids starting at from.
func cards(from, n, h int) []card {
	out := make([]card, n)
	for i := range out {
		out[i] = card{id: from + i, height: h}
	}
	return out
}

var measureCard = masonry.MeasureFunc[card](func(_ context.Context, c card, _ int) (int, error) {
	return c.height, nil
})

type harness struct {
	m     *Manager[card]
	c     *fakeContainer
	clock *pacing.ManualClock

	mu      sync.Mutex
	handles map[int][]*fakeHandle
}

// created returns every handle rendered for card id, oldest first.
func (h *harness) created(id int) []*fakeHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handles[id]
}

func (h *harness) allHandles() []*fakeHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*fakeHandle
	for _, hs := range h.handles {
		out = append(out, hs...)
	}
	return out
}

// newHarness builds a manager over a fake container of width 320 with
// three columns, gap 10, viewport 200 and no buffer or overscan. mutate
// may adjust the config before New.
func newHarness(t *testing.T, items []card, mutate func(*Config[card])) *harness {
	t.Helper()
	h := &harness{
		c:       newFakeContainer(320),
		clock:   pacing.NewManualClock(time.Unix(1000, 0)),
		handles: make(map[int][]*fakeHandle),
	}
	cfg := Config[card]{
		Container:    h.c,
		Columns:      3,
		Gap:          10,
		ViewportSize: 200,
		Buffer:       -1,
		Overscan:     -1,
		Items:        items,
		Measure:      measureCard,
		Clock:        h.clock,
		Render: func(c card) Handle {
			fh := &fakeHandle{index: c.id}
			h.mu.Lock()
			h.handles[c.id] = append(h.handles[c.id], fh)
			h.mu.Unlock()
			return fh
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.m = m
	t.Cleanup(func() { _ = m.Close() })
	return h
}

func (h *harness) init(t *testing.T) {
	t.Helper()
	if err := h.m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
}

func (h *harness) scroll(t *testing.T, y int) {
	t.Helper()
	h.c.scrollTo(y)
	if err := h.m.OnScroll(context.Background()); err != nil {
		t.Fatalf("OnScroll() error = %v", err)
	}
}

func seq(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

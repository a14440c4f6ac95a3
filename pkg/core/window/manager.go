package window

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/core/pacing"
	"github.com/matzehuels/waterfall/pkg/core/visibility"
	"github.com/matzehuels/waterfall/pkg/core/visible"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/observability"
)

// ErrClosed is returned by every operation on a closed Manager.
var ErrClosed = errors.New(errors.ErrCodeClosed, "window manager is closed")

// Stats is a point-in-time summary of a Manager.
type Stats struct {
	Items       int
	Active      int
	Pooled      int
	TotalHeight int
	Loading     bool

	Passes       int // scroll passes run
	Created      int // handles created by Render
	Reused       int // handles taken back from the pool
	Evicted      int // handles evicted from the pool
	Loads        int // completed load-more calls
	LoadFailures int // failed load-more calls
}

// Manager keeps the slice of a masonry collection that intersects the
// viewport materialized as live handles in a Container.
//
// All methods are safe for concurrent use. Layout passes are serialized
// and measure outside the state lock, so scroll passes keep running on the
// previous layout while a relayout is measuring.
type Manager[T any] struct {
	cfg      Config[T]
	logger   *log.Logger
	hooks    observability.WindowHooks
	observer Observer
	scroll   *pacing.Throttle
	resize   *pacing.Debounce

	ctx    context.Context
	cancel context.CancelFunc
	work   sync.WaitGroup // load-more work; Close waits for it
	calls  sync.WaitGroup // load-more calls including error delivery

	layoutMu sync.Mutex // serializes Append and relayout

	mu      sync.Mutex
	items   []masonry.Item[T]
	layout  *masonry.Layout
	index   *visible.Index
	active  map[int]Handle
	pool    *Pool
	loading bool
	started bool
	ready   bool
	closed  bool
	detach  func()
	stats   Stats
}

// New validates cfg, applies defaults and returns a Manager. Nothing is
// laid out or mounted until Initialize.
func New[T any](cfg Config[T]) (*Manager[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager[T]{
		cfg:      cfg,
		logger:   cfg.Logger.WithPrefix("window"),
		hooks:    cfg.Hooks,
		observer: cfg.Observer,
		ctx:      ctx,
		cancel:   cancel,
		layout:   masonry.New(cfg.Columns, cfg.Gap, 0),
		index:    visible.NewIndex(nil),
		active:   make(map[int]Handle),
		pool:     NewPool(),
	}
	if m.observer == nil && cfg.VisibilityMarker != "" {
		m.observer = visibility.NewTracker(cfg.VisibilityThreshold)
	}
	m.scroll = pacing.NewThrottle(m.scrollTick, cfg.ScrollInterval,
		pacing.WithClock(cfg.Clock),
		pacing.WithLeading(!cfg.NoLeading),
		pacing.WithTrailing(!cfg.NoTrailing),
	)
	m.resize = pacing.NewDebounce(m.resizeTick, cfg.ResizeDelay, pacing.WithClock(cfg.Clock))
	return m, nil
}

// =============================================================================
// Lifecycle
// =============================================================================

// Initialize resolves the initial items, lays them out, subscribes to the
// container's scroll and resize notifications and runs the first scroll
// pass. It returns once the first pass has been applied.
func (m *Manager[T]) Initialize(ctx context.Context) error {
	m.mu.Lock()
	switch {
	case m.closed:
		m.mu.Unlock()
		return ErrClosed
	case m.started:
		m.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidConfig, "window manager already initialized")
	}
	m.started = true
	m.mu.Unlock()

	payloads := m.cfg.Items
	if m.cfg.ItemSource != nil {
		p, err := m.cfg.ItemSource(ctx)
		if err != nil {
			m.unstart()
			return fmt.Errorf("load initial items: %w", err)
		}
		payloads = p
	}

	m.layoutMu.Lock()
	err := m.relayoutLocked(ctx, masonry.Wrap(payloads))
	m.layoutMu.Unlock()
	if err != nil {
		m.unstart()
		return err
	}

	detach := m.cfg.Container.Observe(m.HandleScroll, m.HandleResize)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		detach()
		return ErrClosed
	}
	m.detach = detach
	m.ready = true
	m.mu.Unlock()

	m.logger.Debug("initialized", "items", len(payloads), "columns", m.cfg.Columns)
	return m.OnScroll(ctx)
}

// unstart lets Initialize be retried after a failed attempt.
func (m *Manager[T]) unstart() {
	m.mu.Lock()
	m.started = false
	m.mu.Unlock()
}

// Close detaches from the container, cancels pending throttle and debounce
// timers, cancels and waits for an in-flight load, then unmounts every
// active handle and releases all handles. Close is idempotent and may be
// called from OnError. It must not be called from LoadMore, which it waits
// for.
func (m *Manager[T]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	detach := m.detach
	m.detach = nil
	m.mu.Unlock()

	if detach != nil {
		detach()
	}
	m.scroll.Cancel()
	m.resize.Cancel()
	m.cancel()
	m.work.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range slices.Sorted(maps.Keys(m.active)) {
		h := m.active[i]
		m.unobserve(i)
		m.cfg.Container.Unmount(i, h)
		release(h)
	}
	clear(m.active)
	for _, h := range m.pool.Drain() {
		release(h)
	}
	m.logger.Debug("closed", "items", len(m.items))
	return nil
}

// Wait blocks until no load-more call is running and any failure it
// produced has been delivered to OnError.
func (m *Manager[T]) Wait() {
	m.calls.Wait()
}

// =============================================================================
// Host Entry Points
// =============================================================================

// HandleScroll is the scroll notification entry point. Calls are throttled
// to at most one scroll pass per ScrollInterval.
func (m *Manager[T]) HandleScroll() {
	if m.isClosed() {
		return
	}
	m.scroll.Call()
}

// HandleResize is the resize notification entry point. A relayout runs once
// notifications have been quiet for ResizeDelay.
func (m *Manager[T]) HandleResize() {
	if m.isClosed() {
		return
	}
	m.resize.Call()
}

func (m *Manager[T]) scrollTick() {
	if err := m.OnScroll(m.ctx); err != nil && !errors.Is(err, errors.ErrCodeClosed) {
		m.logger.Warn("scroll pass failed", "err", err)
	}
}

func (m *Manager[T]) resizeTick() {
	err := m.Recompute(m.ctx)
	if err != nil && !errors.Is(err, errors.ErrCodeClosed) && m.ctx.Err() == nil {
		m.report(err)
	}
}

// =============================================================================
// Layout
// =============================================================================

// Recompute discards every position and lays the whole collection out
// again at the container's current width, repositions mounted handles and
// runs a scroll pass. Hosts normally reach it through HandleResize.
func (m *Manager[T]) Recompute(ctx context.Context) error {
	if err := m.checkReady(); err != nil {
		return err
	}

	m.layoutMu.Lock()
	m.mu.Lock()
	items := make([]masonry.Item[T], len(m.items))
	for i := range m.items {
		items[i].Payload = m.items[i].Payload
	}
	m.mu.Unlock()
	err := m.relayoutLocked(ctx, items)
	m.layoutMu.Unlock()
	if err != nil {
		return err
	}
	return m.OnScroll(ctx)
}

// relayoutLocked lays items out from scratch and swaps them in. The caller
// holds layoutMu.
func (m *Manager[T]) relayoutLocked(ctx context.Context, items []masonry.Item[T]) error {
	width := m.cfg.Container.Width()
	l := masonry.New(m.cfg.Columns, m.cfg.Gap, 0)

	began := time.Now()
	res, err := masonry.Relayout(ctx, l, width, items, m.cfg.Measure, m.cfg.measureOptions())
	m.hooks.OnLayout(ctx, "relayout", len(items), time.Since(began), err)
	if err != nil {
		return fmt.Errorf("relayout: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.items = items
	m.layout = l
	m.index.Reset(masonry.Boxes(items))
	m.cfg.Container.SetContentHeight(l.TotalHeight())
	for _, i := range slices.Sorted(maps.Keys(m.active)) {
		h := m.active[i]
		m.cfg.Container.Mount(i, h, items[i].Placement())
		m.observe(i, h)
	}
	m.logger.Debug("relayout", "items", len(items), "failed", res.Failed,
		"width", width, "column_width", l.ColumnWidth(), "height", l.TotalHeight())
	return nil
}

// Append lays payloads out after the existing items, extends the content
// height and runs a scroll pass.
func (m *Manager[T]) Append(ctx context.Context, payloads []T) error {
	if err := m.checkReady(); err != nil {
		return err
	}
	if len(payloads) == 0 {
		return nil
	}
	if err := m.appendLayout(ctx, masonry.Wrap(payloads)); err != nil {
		return err
	}
	return m.OnScroll(ctx)
}

func (m *Manager[T]) appendLayout(ctx context.Context, items []masonry.Item[T]) error {
	m.layoutMu.Lock()
	defer m.layoutMu.Unlock()

	m.mu.Lock()
	l := m.layout.Clone()
	m.mu.Unlock()

	began := time.Now()
	res, err := masonry.Batch(ctx, l, items, m.cfg.Measure, m.cfg.measureOptions())
	m.hooks.OnLayout(ctx, "append", len(items), time.Since(began), err)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.items = append(m.items, items...)
	m.layout = l
	m.index.Append(masonry.Boxes(items)...)
	m.cfg.Container.SetContentHeight(l.TotalHeight())
	m.logger.Debug("appended", "count", len(items), "failed", res.Failed,
		"total", len(m.items), "height", l.TotalHeight())
	return nil
}

// =============================================================================
// Scroll Pass
// =============================================================================

type pass struct {
	start, end         int
	mounted, unmounted int
	evicted, pooled    int
}

// OnScroll runs one materialization pass: handles outside the visible
// range are parked in the pool, handles inside it are mounted (reusing a
// parked handle for the same index when there is one), the pool is trimmed,
// visibility is updated and the bottom trigger is checked. A pass with
// nothing to change mounts and unmounts nothing.
func (m *Manager[T]) OnScroll(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if !m.ready {
		m.mu.Unlock()
		return nil
	}
	p := m.passLocked()
	load := m.claimLoadLocked()
	m.mu.Unlock()

	m.hooks.OnScrollPass(ctx, p.start, p.end, p.mounted, p.unmounted)
	if p.evicted > 0 {
		m.hooks.OnPoolEvict(ctx, p.evicted, p.pooled)
	}
	if p.mounted > 0 || p.unmounted > 0 {
		m.logger.Debug("scroll pass", "start", p.start, "end", p.end,
			"mounted", p.mounted, "unmounted", p.unmounted, "pooled", p.pooled)
	}
	if load {
		go m.loadMore()
	}
	return nil
}

func (m *Manager[T]) passLocked() pass {
	m.stats.Passes++
	offset := m.cfg.Container.ScrollOffset()
	start, end := m.index.Range(offset, m.cfg.ViewportSize, m.cfg.Buffer, m.cfg.Overscan)
	p := pass{start: start, end: end}

	var stale []int
	for i := range m.active {
		if i < start || i > end {
			stale = append(stale, i)
		}
	}
	slices.Sort(stale)
	for _, i := range stale {
		h := m.active[i]
		delete(m.active, i)
		m.unobserve(i)
		m.cfg.Container.Unmount(i, h)
		m.pool.Put(i, h)
		p.unmounted++
	}

	for i := start; i <= end; i++ {
		if _, ok := m.active[i]; ok {
			continue
		}
		h, ok := m.pool.Take(i)
		if ok {
			m.stats.Reused++
		} else {
			h = m.cfg.Render(m.items[i].Payload)
			m.stats.Created++
		}
		m.cfg.Container.Mount(i, h, m.items[i].Placement())
		m.active[i] = h
		m.observe(i, h)
		p.mounted++
	}

	for _, h := range m.pool.Trim(m.cfg.MaxPoolSize, m.isActiveLocked) {
		release(h)
		p.evicted++
	}
	m.stats.Evicted += p.evicted
	p.pooled = m.pool.Len()

	if m.observer != nil {
		m.observer.Update(offset, m.cfg.ViewportSize)
	}
	return p
}

func (m *Manager[T]) isActiveLocked(i int) bool {
	_, ok := m.active[i]
	return ok
}

func (m *Manager[T]) observe(i int, h Handle) {
	if m.observer == nil {
		return
	}
	var onEnter, onExit func()
	if mk, ok := h.(Marker); ok && m.cfg.VisibilityMarker != "" {
		name := m.cfg.VisibilityMarker
		onEnter = func() { mk.SetMarker(name, true) }
		onExit = func() { mk.SetMarker(name, false) }
	}
	it := m.items[i]
	m.observer.Observe(i, it.Y, it.Height, onEnter, onExit)
}

func (m *Manager[T]) unobserve(i int) {
	if m.observer != nil {
		m.observer.Unobserve(i)
	}
}

func release(h Handle) {
	if r, ok := h.(Releaser); ok {
		r.Release()
	}
}

// =============================================================================
// Load More
// =============================================================================

// IsNearBottom reports whether the viewport bottom is within BottomBuffer
// of the end of the content.
func (m *Manager[T]) IsNearBottom() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nearBottomLocked()
}

func (m *Manager[T]) nearBottomLocked() bool {
	offset := m.cfg.Container.ScrollOffset()
	return offset+m.cfg.ViewportSize >= m.layout.TotalHeight()-m.cfg.BottomBuffer
}

// claimLoadLocked sets the in-flight flag when a load should start. A
// trigger while a load is in flight is dropped.
func (m *Manager[T]) claimLoadLocked() bool {
	if m.cfg.LoadMore == nil || m.loading || !m.nearBottomLocked() {
		return false
	}
	m.loading = true
	m.calls.Add(1)
	m.work.Add(1)
	return true
}

// loadMore runs one load-more call. A failure is delivered after the
// in-flight flag is cleared and the work is marked done.
func (m *Manager[T]) loadMore() {
	defer m.calls.Done()
	if err := m.fetchMore(); err != nil {
		m.report(err)
	}
}

func (m *Manager[T]) fetchMore() error {
	defer m.work.Done()
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	ctx := m.ctx
	began := time.Now()
	payloads, err := m.cfg.LoadMore(ctx)
	if err == nil && len(payloads) > 0 {
		err = m.Append(ctx, payloads)
	}
	m.hooks.OnLoadMore(ctx, len(payloads), time.Since(began), err)

	m.mu.Lock()
	n := len(m.items)
	if err == nil {
		m.stats.Loads++
	} else if !m.closed {
		m.stats.LoadFailures++
	}
	closed := m.closed
	m.mu.Unlock()

	switch {
	case err == nil && len(payloads) == 0:
		m.logger.Debug("load more returned no items", "items", n)
	case err == nil:
		m.logger.Debug("loaded more", "count", len(payloads), "items", n)
	case closed:
		// Cancelled by Close.
	default:
		return errors.Wrap(errors.ErrCodeLoadMore, err, "load more after %d items", n)
	}
	return nil
}

func (m *Manager[T]) report(err error) {
	m.logger.Warn("window error", "err", err)
	if m.cfg.OnError != nil {
		m.cfg.OnError(err)
	}
}

// =============================================================================
// Introspection
// =============================================================================

func (m *Manager[T]) checkReady() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.closed:
		return ErrClosed
	case !m.ready:
		return errors.New(errors.ErrCodeInvalidConfig, "window manager not initialized")
	}
	return nil
}

func (m *Manager[T]) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Items returns a copy of the laid-out items.
func (m *Manager[T]) Items() []masonry.Item[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

// Len returns the number of items.
func (m *Manager[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// TotalHeight returns the content height.
func (m *Manager[T]) TotalHeight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layout.TotalHeight()
}

// Columns returns a copy of the column accumulators.
func (m *Manager[T]) Columns() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layout.Columns()
}

// ActiveIndices returns the mounted item indices in ascending order.
func (m *Manager[T]) ActiveIndices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.active))
}

// PoolLen returns the number of parked handles.
func (m *Manager[T]) PoolLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.Len()
}

// PooledIndices returns the parked item indices from oldest to newest.
func (m *Manager[T]) PooledIndices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.Indices()
}

// Loading reports whether a load-more call is in flight.
func (m *Manager[T]) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager[T]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.Items = len(m.items)
	s.Active = len(m.active)
	s.Pooled = m.pool.Len()
	s.TotalHeight = m.layout.TotalHeight()
	s.Loading = m.loading
	return s
}

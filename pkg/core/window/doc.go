// Package window virtualizes a masonry collection inside a scrollable
// container.
//
// A [Manager] owns the items, their layout, the set of mounted handles and
// a bounded pool of recycled ones. On every scroll pass it asks the range
// finder which item indices intersect the buffered viewport, parks handles
// that left the range, mounts handles for items that entered it and trims
// the pool back to its bound, evicting the oldest parked handles first.
//
// Scroll notifications are throttled, resize notifications are debounced
// into a full relayout, and approaching the end of the content triggers at
// most one load-more call at a time.
//
// # Usage
//
//	m, err := window.New(window.Config[feed.Item]{
//	    Container:    canvas,
//	    Columns:      3,
//	    Gap:          1,
//	    ViewportSize: canvas.Height(),
//	    Items:        items,
//	    Render:       term.Render,
//	    Measure:      term.NewMeasurer(),
//	    LoadMore:     pager.Next,
//	})
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//	if err := m.Initialize(ctx); err != nil {
//	    return err
//	}
package window

// Package term hosts a waterfall in a terminal.
//
// [Canvas] implements window.Container over a grid of character cells: a
// column width and heights are counted in cells, and the scroll offset is
// a row. [Render] creates [Card] handles styled with lipgloss, and
// [Measurer] reports how many rows a card occupies at a given width, so the
// masonry layout and the painted cards always agree.
//
//	canvas := term.NewCanvas(width, height)
//	m, err := window.New(window.Config[feed.Item]{
//	    Container:        canvas,
//	    Columns:          3,
//	    Gap:              1,
//	    ViewportSize:     canvas.Height(),
//	    Render:           term.Render,
//	    Measure:          term.NewMeasurer(),
//	    VisibilityMarker: term.MarkerInView,
//	})
//
// The host drives the canvas with ScrollBy and Resize and repaints with
// View whenever Changed fires.
package term

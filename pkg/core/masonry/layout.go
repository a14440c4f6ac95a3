package masonry

import "slices"

// Placement is the position assigned to one item.
type Placement struct {
	Column int
	X      int
	Y      int
	Width  int
	Height int
}

// Layout holds the per-column accumulators of a masonry layout.
//
// Layout is not safe for concurrent use.
type Layout struct {
	gap         int
	columnWidth int
	columns     []int
}

// New returns an empty layout with the given column count (at least 1),
// gap and column width.
func New(columns, gap, columnWidth int) *Layout {
	return &Layout{
		gap:         max(gap, 0),
		columnWidth: max(columnWidth, 0),
		columns:     make([]int, max(columns, 1)),
	}
}

// ColumnWidth derives the column width that fits columns columns separated
// by gap into containerWidth, floored to whole units.
func ColumnWidth(containerWidth, columns, gap int) int {
	if columns < 1 {
		return 0
	}
	return max((containerWidth-(columns-1)*gap)/columns, 0)
}

// Reset zeroes every accumulator and switches to a new column width.
func (l *Layout) Reset(columnWidth int) {
	l.columnWidth = max(columnWidth, 0)
	clear(l.columns)
}

// Place assigns an item of the given height to the least-loaded column and
// advances that column by height+gap.
func (l *Layout) Place(height int) Placement {
	col := 0
	for c, h := range l.columns {
		if h < l.columns[col] {
			col = c
		}
	}
	p := Placement{
		Column: col,
		X:      col * (l.columnWidth + l.gap),
		Y:      l.columns[col],
		Width:  l.columnWidth,
		Height: height,
	}
	l.columns[col] += height + l.gap
	return p
}

// Clone returns an independent copy of the layout.
func (l *Layout) Clone() *Layout {
	return &Layout{gap: l.gap, columnWidth: l.columnWidth, columns: slices.Clone(l.columns)}
}

// Columns returns a copy of the column accumulators.
func (l *Layout) Columns() []int { return slices.Clone(l.columns) }

// ColumnCount returns the number of columns.
func (l *Layout) ColumnCount() int { return len(l.columns) }

// ColumnWidth returns the current column width.
func (l *Layout) ColumnWidth() int { return l.columnWidth }

// Gap returns the spacing between columns and between stacked items.
func (l *Layout) Gap() int { return l.gap }

// Extent returns the largest accumulator, trailing gap included.
func (l *Layout) Extent() int { return slices.Max(l.columns) }

// TotalHeight returns the content height: the largest accumulator without
// the trailing gap that follows the last item of that column.
func (l *Layout) TotalHeight() int {
	ext := l.Extent()
	if ext == 0 {
		return 0
	}
	return max(ext-l.gap, 0)
}

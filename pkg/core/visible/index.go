package visible

import (
	"slices"
	"sort"
)

// Box is the vertical extent of one item.
type Box struct {
	Y      int
	Height int
}

// Index is a y-sorted view over a sequence of boxes. Items keep their
// sequence index as identity; the index only changes the search order.
//
// Index is not safe for concurrent use.
type Index struct {
	boxes     []Box
	order     []int // item indices sorted by (y, index)
	maxHeight int
}

// NewIndex builds an Index over boxes.
func NewIndex(boxes []Box) *Index {
	idx := &Index{}
	idx.Reset(boxes)
	return idx
}

// Reset discards the index and rebuilds it from boxes.
func (x *Index) Reset(boxes []Box) {
	x.boxes = slices.Clone(boxes)
	x.order = make([]int, len(boxes))
	x.maxHeight = 0
	for i, b := range boxes {
		x.order[i] = i
		x.maxHeight = max(x.maxHeight, b.Height)
	}
	sort.SliceStable(x.order, func(a, b int) bool {
		return x.boxes[x.order[a]].Y < x.boxes[x.order[b]].Y
	})
}

// Append adds boxes for the next item indices. Each new entry is inserted at
// its sorted position; appended masonry items land near the tail, so the
// insertion shifts are short in practice.
func (x *Index) Append(boxes ...Box) {
	for _, b := range boxes {
		i := len(x.boxes)
		x.boxes = append(x.boxes, b)
		x.maxHeight = max(x.maxHeight, b.Height)
		pos := sort.Search(len(x.order), func(k int) bool {
			return x.boxes[x.order[k]].Y > b.Y
		})
		x.order = slices.Insert(x.order, pos, i)
	}
}

// Len returns the number of indexed items.
func (x *Index) Len() int { return len(x.boxes) }

// Range returns the smallest contiguous item-index range containing every
// item whose box intersects the buffered window, widened by overscan and
// clamped. The range is never empty unless the index is, in which case
// end < start.
func (x *Index) Range(scrollOffset, viewportSize, buffer, overscan int) (start, end int) {
	n := len(x.boxes)
	if n == 0 {
		return 0, -1
	}
	top, bottom := Window(scrollOffset, viewportSize, buffer)

	// An item starting above top can still reach into the window; no item
	// is taller than maxHeight.
	lo := sort.Search(n, func(k int) bool { return x.boxes[x.order[k]].Y >= top-x.maxHeight })
	hi := sort.Search(n, func(k int) bool { return x.boxes[x.order[k]].Y > bottom })

	start, end = n, -1
	for _, i := range x.order[lo:hi] {
		b := x.boxes[i]
		if b.Y+b.Height < top {
			continue
		}
		start = min(start, i)
		end = max(end, i)
	}
	if end < start {
		// Nothing intersects: anchor on the nearest item below the window,
		// or the lowest item when scrolled past the end.
		anchor := x.order[min(hi, n-1)]
		start, end = anchor, anchor
	}
	overscan = max(overscan, 0)
	return max(0, start-overscan), min(n-1, end+overscan)
}

// Visible returns the item indices intersecting the buffered window in
// ascending index order, without overscan.
func (x *Index) Visible(scrollOffset, viewportSize, buffer int) []int {
	top, bottom := Window(scrollOffset, viewportSize, buffer)
	n := len(x.boxes)
	lo := sort.Search(n, func(k int) bool { return x.boxes[x.order[k]].Y >= top-x.maxHeight })
	hi := sort.Search(n, func(k int) bool { return x.boxes[x.order[k]].Y > bottom })

	var out []int
	for _, i := range x.order[lo:hi] {
		if b := x.boxes[i]; b.Y+b.Height >= top {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return out
}

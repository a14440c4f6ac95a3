package visible

import (
	"sort"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// Window returns the buffered extent [top, bottom] for a scroll position.
func Window(scrollOffset, viewportSize, buffer int) (top, bottom int) {
	return scrollOffset - buffer, scrollOffset + viewportSize + buffer
}

// Range returns the inclusive index range to materialize for ys, which must
// be sorted ascending. start is the first index with y >= top and end the
// first index with y >= bottom, or the last index with y == bottom when
// several items share it. Both are widened by overscan and clamped to the
// slice. An empty ys returns end < start.
func Range(scrollOffset, viewportSize, buffer int, ys []int, overscan int) (start, end int) {
	top, bottom := Window(scrollOffset, viewportSize, buffer)
	overscan = max(overscan, 0)

	start = lowerBound(ys, top)
	end = max(lowerBound(ys, bottom), upperBound(ys, bottom)-1)
	return max(0, start-overscan), min(len(ys)-1, end+overscan)
}

// lowerBound returns the first index whose value is >= target, or len(ys).
func lowerBound(ys []int, target int) int {
	return sort.Search(len(ys), func(i int) bool { return ys[i] >= target })
}

// upperBound returns the first index whose value is > target, or len(ys).
func upperBound(ys []int, target int) int {
	return sort.Search(len(ys), func(i int) bool { return ys[i] > target })
}

// Sorted reports whether ys is non-decreasing.
func Sorted(ys []int) bool {
	return sort.IntsAreSorted(ys)
}

// Check returns an ErrCodeUnsorted error naming the first index that breaks
// the ordering [Range] relies on, or nil.
func Check(ys []int) error {
	for i := 1; i < len(ys); i++ {
		if ys[i] < ys[i-1] {
			return errors.New(errors.ErrCodeUnsorted, "y at index %d (%d) is below index %d (%d)", i, ys[i], i-1, ys[i-1])
		}
	}
	return nil
}

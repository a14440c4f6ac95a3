package visible

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/waterfall/pkg/errors"
)

func singleColumn(n, step int) []int {
	ys := make([]int, n)
	for i := range ys {
		ys[i] = i * step
	}
	return ys
}

func TestRange(t *testing.T) {
	ys := singleColumn(10, 100) // 0, 100, ..., 900

	tests := []struct {
		name                         string
		scroll, viewport, buffer, ov int
		wantStart, wantEnd           int
	}{
		{"top of list", 0, 200, 0, 0, 0, 2},
		{"middle", 350, 200, 0, 0, 4, 6},
		{"buffer widens", 350, 200, 100, 0, 3, 7},
		{"overscan widens", 350, 200, 0, 2, 2, 8},
		{"clamped at end", 850, 200, 0, 3, 6, 9},
		{"negative top clamps to zero", 0, 100, 500, 0, 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Range(tt.scroll, tt.viewport, tt.buffer, ys, tt.ov)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Range() = (%d, %d), want (%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestRangeTiesAtBottom(t *testing.T) {
	// Three columns of 60-high rows share their y values.
	ys := []int{0, 0, 0, 60, 60, 60, 120, 120, 120}

	tests := []struct {
		name               string
		scroll, viewport   int
		wantStart, wantEnd int
	}{
		{"row on the bottom edge", 0, 60, 0, 5},
		{"bottom between rows", 0, 30, 0, 3},
		{"last row on the edge", 60, 60, 3, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Range(tt.scroll, tt.viewport, 0, ys, 0)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Range() = (%d, %d), want (%d, %d)", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestRangeEmpty(t *testing.T) {
	start, end := Range(0, 500, 300, nil, 3)
	if end >= start {
		t.Errorf("Range(empty) = (%d, %d), want end < start", start, end)
	}
}

func TestRangeScrolledScenario(t *testing.T) {
	// Single column, y = 0, 60, 120, ...; offset 1000, buffer 300, viewport 500.
	ys := singleColumn(100, 60)
	start, end := Range(1000, 500, 300, ys, 0)

	for i, y := range ys {
		if y >= 700 && y <= 1800 && (i < start || i > end) {
			t.Errorf("index %d (y=%d) outside range (%d, %d)", i, y, start, end)
		}
	}
}

// Every index whose y lies in the window is returned, for any sorted input
// and scroll offset, and overscan only widens the result.
func TestRangeNoFalseNegatives(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for trial := range 200 {
		n := 1 + r.IntN(300)
		ys := make([]int, n)
		y := 0
		for i := range ys {
			if r.IntN(3) > 0 {
				y += r.IntN(80)
			}
			ys[i] = y
		}
		scroll := r.IntN(y + 1)
		viewport := 1 + r.IntN(600)
		buffer := r.IntN(400)
		if trial%4 == 0 {
			// Put the window's bottom edge exactly on an item.
			buffer = 0
			viewport = max(ys[r.IntN(n)]-scroll, 0)
		}

		start, end := Range(scroll, viewport, buffer, ys, 0)
		top, bottom := Window(scroll, viewport, buffer)
		for i, y := range ys {
			if y >= top && y <= bottom && (i < start || i > end) {
				t.Fatalf("trial %d: index %d (y=%d) in [%d, %d] but range is (%d, %d)", trial, i, y, top, bottom, start, end)
			}
		}

		ovStart, ovEnd := Range(scroll, viewport, buffer, ys, 1+r.IntN(5))
		if ovStart > start || ovEnd < end {
			t.Fatalf("trial %d: overscan narrowed (%d, %d) to (%d, %d)", trial, start, end, ovStart, ovEnd)
		}
	}
}

func TestCheck(t *testing.T) {
	if err := Check([]int{0, 0, 10, 20}); err != nil {
		t.Errorf("Check(sorted) = %v, want nil", err)
	}
	err := Check([]int{0, 60, 0, 120})
	if !errors.Is(err, errors.ErrCodeUnsorted) {
		t.Errorf("Check(unsorted) = %v, want %s", err, errors.ErrCodeUnsorted)
	}
	if Sorted([]int{0, 60, 0}) {
		t.Error("Sorted() = true for an unsorted sequence")
	}
}

// On unsorted input the plain search is allowed to miss items; the Index
// is not.
func TestRangeUnsortedInput(t *testing.T) {
	ys := []int{0, 0, 500, 60, 120, 180, 240, 300}

	start, end := Range(50, 20, 0, ys, 0) // window [50, 70] holds index 3
	if 3 >= start && 3 <= end {
		t.Fatalf("Range() = (%d, %d): fixture no longer demonstrates the miss", start, end)
	}

	idx := NewIndex(boxesFromYs(ys, 5))
	start, end = idx.Range(50, 20, 0, 0)
	if 3 < start || 3 > end {
		t.Errorf("Index.Range() = (%d, %d), want it to contain index 3", start, end)
	}
}

func TestIndexCoversItemStartingAboveWindow(t *testing.T) {
	boxes := []Box{{Y: 0, Height: 1000}, {Y: 0, Height: 50}, {Y: 60, Height: 50}, {Y: 120, Height: 50}}
	start, _ := Range(600, 100, 0, []int{0, 0, 60, 120}, 0)
	if start == 0 {
		t.Fatal("plain search should start past the tall item")
	}

	idx := NewIndex(boxes)
	start, end := idx.Range(600, 100, 0, 0)
	if start != 0 || end != 0 {
		t.Errorf("Index.Range() = (%d, %d), want (0, 0)", start, end)
	}
}

func boxesFromYs(ys []int, h int) []Box {
	boxes := make([]Box, len(ys))
	for i, y := range ys {
		boxes[i] = Box{Y: y, Height: h}
	}
	return boxes
}

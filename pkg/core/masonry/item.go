package masonry

import "github.com/matzehuels/waterfall/pkg/core/visible"

// Item is one record of the collection plus the fields the layout derives
// for it. Callers own Payload; every other field is written by the layout.
type Item[T any] struct {
	Payload T

	Column int
	X      int
	Y      int
	Width  int
	Height int

	// Err records a measurement failure. The item is still placed, using
	// the fallback height.
	Err error
}

// Wrap turns payloads into unplaced items.
func Wrap[T any](payloads []T) []Item[T] {
	items := make([]Item[T], len(payloads))
	for i, p := range payloads {
		items[i].Payload = p
	}
	return items
}

func (it *Item[T]) apply(p Placement) {
	it.Column = p.Column
	it.X = p.X
	it.Y = p.Y
	it.Width = p.Width
	it.Height = p.Height
}

func (it *Item[T]) reset() {
	it.apply(Placement{})
	it.Err = nil
}

// Placement returns the layout-derived fields of the item.
func (it Item[T]) Placement() Placement {
	return Placement{Column: it.Column, X: it.X, Y: it.Y, Width: it.Width, Height: it.Height}
}

// Ys returns the y position of every item.
func Ys[T any](items []Item[T]) []int {
	ys := make([]int, len(items))
	for i, it := range items {
		ys[i] = it.Y
	}
	return ys
}

// Boxes returns the vertical extent of every item for a [visible.Index].
func Boxes[T any](items []Item[T]) []visible.Box {
	boxes := make([]visible.Box, len(items))
	for i, it := range items {
		boxes[i] = visible.Box{Y: it.Y, Height: it.Height}
	}
	return boxes
}

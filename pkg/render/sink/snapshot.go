package sink

import (
	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/feed"
)

// Snapshot is the geometry of a waterfall at one point in time.
type Snapshot struct {
	Width       int
	Height      int
	Columns     int
	Gap         int
	ColumnWidth int
	Cards       []Card
}

// Card is one placed item.
type Card struct {
	Index  int
	Item   feed.Item
	Column int
	X, Y   int
	W, H   int
	Failed bool
}

// NewSnapshot captures l and its items. width is the container width the
// layout was computed for.
func NewSnapshot(l *masonry.Layout, width int, items []masonry.Item[feed.Item]) Snapshot {
	s := Snapshot{
		Width:       width,
		Height:      l.TotalHeight(),
		Columns:     l.ColumnCount(),
		Gap:         l.Gap(),
		ColumnWidth: l.ColumnWidth(),
		Cards:       make([]Card, len(items)),
	}
	for i, it := range items {
		s.Cards[i] = Card{
			Index:  i,
			Item:   it.Payload,
			Column: it.Column,
			X:      it.X,
			Y:      it.Y,
			W:      it.Width,
			H:      it.Height,
			Failed: it.Err != nil,
		}
	}
	return s
}

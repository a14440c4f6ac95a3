package masonry

import (
	"context"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// Result summarizes one layout pass.
type Result struct {
	Placed int // items assigned a position
	Failed int // items placed with the fallback height
}

// Batch measures items at the layout's column width and places them in
// order, continuing from the current accumulators. Measurement failures are
// recorded on the item and do not stop the batch. If ctx is cancelled
// before measurement completes, Batch returns ctx.Err() and leaves both the
// layout and the items untouched.
func Batch[T any](ctx context.Context, l *Layout, items []Item[T], m Measurer[T], opts Options) (Result, error) {
	heights := measureAll(ctx, items, l.ColumnWidth(), m, opts)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var res Result
	for i := range items {
		it := &items[i]
		h := heights[i].height
		it.Err = nil
		if err := heights[i].err; err != nil {
			it.Err = errors.Wrap(errors.ErrCodeMeasurement, err, "measure item %d", i)
			h = max(opts.FallbackHeight, 0)
			res.Failed++
		}
		it.apply(l.Place(h))
		res.Placed++
	}
	return res, nil
}

// Relayout discards every derived position, recomputes the column width for
// containerWidth and lays all items out again from the first one. It is
// O(n) in measurements and meant to be rate limited by the caller.
//
// On cancellation the layout is left reset and the items unplaced; the
// caller is expected to relayout again.
func Relayout[T any](ctx context.Context, l *Layout, containerWidth int, items []Item[T], m Measurer[T], opts Options) (Result, error) {
	l.Reset(ColumnWidth(containerWidth, l.ColumnCount(), l.Gap()))
	for i := range items {
		items[i].reset()
	}
	return Batch(ctx, l, items, m, opts)
}

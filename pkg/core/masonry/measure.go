package masonry

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// Measurer reports the rendered height of an item laid out at width, in
// whole units. Measurement may block on external work such as images
// finishing their load; implementations should honor ctx.
type Measurer[T any] interface {
	Measure(ctx context.Context, item T, width int) (int, error)
}

// MeasureFunc adapts a function to [Measurer].
type MeasureFunc[T any] func(ctx context.Context, item T, width int) (int, error)

// Measure calls f.
func (f MeasureFunc[T]) Measure(ctx context.Context, item T, width int) (int, error) {
	return f(ctx, item, width)
}

// Options tune how a batch is measured.
type Options struct {
	// Concurrency bounds parallel measurements. 0 or 1 measures items one
	// after another.
	Concurrency int

	// Timeout bounds each measurement. A measurement that does not return
	// in time fails with ErrCodeTimeout. 0 waits for as long as ctx allows.
	Timeout time.Duration

	// FallbackHeight is used for items whose measurement failed.
	FallbackHeight int
}

type measured struct {
	height int
	err    error
}

func measureAll[T any](ctx context.Context, items []Item[T], width int, m Measurer[T], opts Options) []measured {
	out := make([]measured, len(items))
	if opts.Concurrency <= 1 {
		for i := range items {
			if ctx.Err() != nil {
				break
			}
			out[i] = measureOne(ctx, items[i].Payload, width, m, opts.Timeout)
		}
		return out
	}

	// Per-item failures are recorded, not returned, so one bad item does
	// not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(opts.Concurrency)
	for i := range items {
		g.Go(func() error {
			if ctx.Err() == nil {
				out[i] = measureOne(ctx, items[i].Payload, width, m, opts.Timeout)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// measureOne runs a single measurement. The measurer runs on its own
// goroutine so that one that ignores ctx still cannot stall the batch past
// the timeout.
func measureOne[T any](parent context.Context, payload T, width int, m Measurer[T], timeout time.Duration) measured {
	ctx := parent
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, timeout)
		defer cancel()
	}

	done := make(chan measured, 1)
	go func() {
		h, err := m.Measure(ctx, payload, width)
		done <- measured{height: h, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil && r.height < 0 {
			r.err = errors.New(errors.ErrCodeMeasurement, "negative height %d", r.height)
		}
		return r
	case <-ctx.Done():
		if err := parent.Err(); err != nil {
			return measured{err: err}
		}
		return measured{err: errors.New(errors.ErrCodeTimeout, "measurement did not finish within %s", timeout)}
	}
}

package window

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/core/pacing"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/observability"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultBuffer is the extra distance materialized above and below the
	// viewport.
	DefaultBuffer = 300

	// DefaultBottomBuffer is the distance from the end of the content at
	// which the load-more trigger fires. It is independent of DefaultBuffer.
	DefaultBottomBuffer = 50

	// DefaultMaxPoolSize bounds the number of parked handles.
	DefaultMaxPoolSize = 300

	// DefaultScrollInterval is the throttle interval for scroll passes.
	DefaultScrollInterval = 100 * time.Millisecond

	// DefaultResizeDelay is the debounce delay for relayout after resize.
	DefaultResizeDelay = 200 * time.Millisecond

	// DefaultMeasureTimeout bounds each item measurement.
	DefaultMeasureTimeout = 2 * time.Second

	// DefaultMeasureConcurrency bounds parallel measurements.
	DefaultMeasureConcurrency = 4

	// DefaultVisibilityThreshold is the intersection ratio at which a
	// mounted handle receives the visibility marker.
	DefaultVisibilityThreshold = 0.1
)

// Config configures a [Manager].
type Config[T any] struct {
	// Container is the scrollable host. Required.
	Container Container

	// Columns is the number of masonry columns. Required, >= 1.
	Columns int

	// Gap is the spacing between columns and between stacked items.
	Gap int

	// ViewportSize is the visible height of the container.
	ViewportSize int

	// Items is the initial collection. ItemSource, when set, is called
	// during Initialize instead.
	Items      []T
	ItemSource func(ctx context.Context) ([]T, error)

	// Buffer is the distance materialized beyond each viewport edge.
	// 0 uses DefaultBuffer; a negative value disables the buffer.
	Buffer int

	// BottomBuffer is the distance from the content end that counts as
	// near the bottom. 0 uses DefaultBottomBuffer; a negative value means
	// only the very end counts.
	BottomBuffer int

	// Overscan widens the visible index range by this many items on each
	// side. 0 uses Columns; a negative value disables overscan.
	Overscan int

	// MaxPoolSize bounds the number of parked handles. 0 uses
	// DefaultMaxPoolSize; a negative value disables recycling.
	MaxPoolSize int

	// Render creates the handle for an item. Required.
	Render RenderFunc[T]

	// Measure reports item heights. Required.
	Measure masonry.Measurer[T]

	// LoadMore fetches the next items when the viewport nears the bottom.
	// An empty result means nothing more is available right now.
	LoadMore func(ctx context.Context) ([]T, error)

	// VisibilityMarker is the marker name applied to handles implementing
	// Marker while they intersect the viewport. Empty disables tracking.
	VisibilityMarker    string
	VisibilityThreshold float64

	// Observer replaces the default geometric visibility tracker.
	Observer Observer

	// ScrollInterval throttles scroll passes. NoLeading and NoTrailing
	// disable the respective throttle edges.
	ScrollInterval time.Duration
	NoLeading      bool
	NoTrailing     bool

	// ResizeDelay debounces relayout after resize notifications.
	ResizeDelay time.Duration

	// MeasureTimeout bounds each measurement. MeasureConcurrency bounds
	// parallel measurements. FallbackHeight is used for failed items.
	MeasureTimeout     time.Duration
	MeasureConcurrency int
	FallbackHeight     int

	// Clock drives throttle and debounce timers. Defaults to the wall clock.
	Clock pacing.Clock

	// Logger receives debug and warning output. Defaults to a discarding logger.
	Logger *log.Logger

	// Hooks receives window events. Defaults to the registered global hooks.
	Hooks observability.WindowHooks

	// OnError receives failures that do not stop the manager, such as a
	// failed load-more.
	OnError func(error)
}

func (c *Config[T]) setDefaults() {
	c.Buffer = orDefault(c.Buffer, DefaultBuffer)
	c.BottomBuffer = orDefault(c.BottomBuffer, DefaultBottomBuffer)
	c.Overscan = orDefault(c.Overscan, c.Columns)
	c.MaxPoolSize = orDefault(c.MaxPoolSize, DefaultMaxPoolSize)
	if c.ScrollInterval == 0 {
		c.ScrollInterval = DefaultScrollInterval
	}
	if c.ResizeDelay == 0 {
		c.ResizeDelay = DefaultResizeDelay
	}
	if c.MeasureTimeout == 0 {
		c.MeasureTimeout = DefaultMeasureTimeout
	}
	if c.MeasureConcurrency == 0 {
		c.MeasureConcurrency = DefaultMeasureConcurrency
	}
	if c.VisibilityThreshold == 0 {
		c.VisibilityThreshold = DefaultVisibilityThreshold
	}
	if c.Clock == nil {
		c.Clock = pacing.SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if c.Hooks == nil {
		c.Hooks = observability.Window()
	}
}

func (c *Config[T]) validate() error {
	switch {
	case c.Container == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "container is required")
	case c.Columns < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "columns must be >= 1, got %d", c.Columns)
	case c.Render == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "render function is required")
	case c.Measure == nil:
		return errors.New(errors.ErrCodeInvalidConfig, "measurer is required")
	case c.Gap < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "gap must be >= 0, got %d", c.Gap)
	case c.ViewportSize < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "viewport size must be >= 0, got %d", c.ViewportSize)
	case c.ScrollInterval < 0, c.ResizeDelay < 0, c.MeasureTimeout < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "durations must be >= 0")
	case c.VisibilityThreshold < 0 || c.VisibilityThreshold > 1:
		return errors.New(errors.ErrCodeInvalidConfig, "visibility threshold must be in [0, 1], got %v", c.VisibilityThreshold)
	case c.Items != nil && c.ItemSource != nil:
		return errors.New(errors.ErrCodeInvalidConfig, "items and item source are mutually exclusive")
	}
	return nil
}

// orDefault maps 0 to def and negative values to 0.
func orDefault(v, def int) int {
	switch {
	case v == 0:
		return def
	case v < 0:
		return 0
	}
	return v
}

func (c *Config[T]) measureOptions() masonry.Options {
	return masonry.Options{
		Concurrency:    c.MeasureConcurrency,
		Timeout:        c.MeasureTimeout,
		FallbackHeight: c.FallbackHeight,
	}
}

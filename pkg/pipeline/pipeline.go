// Package pipeline lays out a whole item collection at once and renders it.
//
// The window manager lays items out incrementally while a user scrolls.
// The pipeline runs the same masonry algorithm over a complete collection
// for batch outputs: static SVG/PNG/PDF previews and JSON geometry for
// other tools. It is shared by the CLI layout command and by tests.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read items from a file or page them from a feed URL
//  2. Layout: measure every item and place it with [masonry.Batch]
//  3. Render: turn the snapshot into each requested format
//
// Rendered artifacts are cached by a hash of the items and the options
// that change the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	items, err := runner.Load(ctx, "items.json", 0)
//	result, err := runner.Execute(ctx, items, pipeline.Options{
//	    Columns: 4,
//	    Width:   1200,
//	    Formats: []string{"svg", "json"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/render/sink"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultColumns is the default number of masonry columns.
	DefaultColumns = 3

	// DefaultGap is the default space between cards, in pixels.
	DefaultGap = 16

	// DefaultWidth is the default container width in pixels.
	DefaultWidth = 960

	// DefaultConcurrency bounds parallel measurements.
	DefaultConcurrency = 4

	// DefaultFallbackHeight is used for cards that fail to measure.
	DefaultFallbackHeight = 120

	// DefaultTheme is the default SVG color theme.
	DefaultTheme = ThemeLight
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// Theme names.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Themes maps theme names to SVG colors.
var Themes = map[string]sink.Theme{
	ThemeLight: sink.LightTheme,
	ThemeDark:  sink.DarkTheme,
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Layout options
	Columns        int           `json:"columns,omitempty" toml:"columns"`
	Gap            int           `json:"gap,omitempty" toml:"gap"`
	Width          int           `json:"width,omitempty" toml:"width"`
	Concurrency    int           `json:"concurrency,omitempty" toml:"concurrency"`
	MeasureTimeout time.Duration `json:"measure_timeout,omitempty" toml:"measure_timeout"`
	FallbackHeight int           `json:"fallback_height,omitempty" toml:"fallback_height"`

	// Render options
	Formats        []string `json:"formats,omitempty" toml:"formats"`
	Theme          string   `json:"theme,omitempty" toml:"theme"`
	ViewportTop    int      `json:"viewport_top,omitempty" toml:"viewport_top"`
	ViewportHeight int      `json:"viewport_height,omitempty" toml:"viewport_height"`
	Bodies         bool     `json:"bodies,omitempty" toml:"bodies"`
	Source         string   `json:"source,omitempty" toml:"-"`
	Refresh        bool     `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Measure masonry.Measurer[feed.Item] `json:"-" toml:"-"`
	Logger  *log.Logger                 `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the final column state.
	Layout *masonry.Layout

	// Items are the placed items in input order.
	Items []masonry.Item[feed.Item]

	// ItemsHash is the content hash of the input items.
	ItemsHash string

	// Snapshot is the geometry handed to the sinks.
	Snapshot sink.Snapshot

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items       int
	Failed      int
	TotalHeight int
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme name is known.
func ValidateTheme(theme string) error {
	if _, ok := Themes[theme]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid theme: %q (must be one of: light, dark)", theme)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout validates and sets defaults for the layout stage.
func (o *Options) ValidateForLayout() error {
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	if o.Gap == 0 {
		o.Gap = DefaultGap
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.FallbackHeight == 0 {
		o.FallbackHeight = DefaultFallbackHeight
	}
	if o.Measure == nil {
		o.Measure = NewTextMeasurer()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := errors.ValidatePositive("columns", o.Columns, 1); err != nil {
		return err
	}
	if err := errors.ValidatePositive("gap", o.Gap, 0); err != nil {
		return err
	}
	if err := errors.ValidatePositive("width", o.Width, o.Columns); err != nil {
		return err
	}
	if o.MeasureTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "measure timeout must be >= 0, got %s", o.MeasureTimeout)
	}
	return nil
}

// ValidateForRender validates and sets defaults for the render stage.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.ViewportTop < 0 || o.ViewportHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport must not be negative")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateTheme(o.Theme)
}

// MeasureOptions returns the masonry batch options.
func (o *Options) MeasureOptions() masonry.Options {
	return masonry.Options{
		Concurrency:    o.Concurrency,
		Timeout:        o.MeasureTimeout,
		FallbackHeight: o.FallbackHeight,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.LayoutKeyOpts {
	variant := []string{"theme=" + o.Theme}
	if o.ViewportHeight > 0 {
		variant = append(variant, fmt.Sprintf("viewport=%d+%d", o.ViewportTop, o.ViewportHeight))
	}
	if o.Bodies {
		variant = append(variant, "bodies")
	}
	if o.Source != "" {
		variant = append(variant, "source="+o.Source)
	}
	slices.Sort(variant)
	return cache.LayoutKeyOpts{
		Columns: o.Columns,
		Gap:     o.Gap,
		Width:   o.Width,
		Format:  format,
		Variant: strings.Join(variant, ","),
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/feed"
	"github.com/matzehuels/waterfall/pkg/observability"
	"github.com/matzehuels/waterfall/pkg/render/sink"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the layout → render pipeline over items.
func (r *Runner) Execute(ctx context.Context, items []feed.Item, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{ItemsHash: HashItems(items)}

	layoutStart := time.Now()
	l, placed, res, err := r.ComputeLayout(ctx, items, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Items = placed
	result.Snapshot = sink.NewSnapshot(l, opts.Width, placed)
	result.Stats.Items = res.Placed
	result.Stats.Failed = res.Failed
	result.Stats.TotalHeight = l.TotalHeight()
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"items", res.Placed,
		"failed", res.Failed,
		"columns", opts.Columns,
		"height", result.Stats.TotalHeight,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.Snapshot, result.ItemsHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayout measures and places every item.
func (r *Runner) ComputeLayout(ctx context.Context, items []feed.Item, opts Options) (*masonry.Layout, []masonry.Item[feed.Item], masonry.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, nil, masonry.Result{}, err
	}
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Columns, len(items))
	start := time.Now()

	l := masonry.New(opts.Columns, opts.Gap, masonry.ColumnWidth(opts.Width, opts.Columns, opts.Gap))
	placed := masonry.Wrap(items)
	res, err := masonry.Batch(ctx, l, placed, opts.Measure, opts.MeasureOptions())
	hooks.OnLayoutComplete(ctx, opts.Columns, time.Since(start), err)
	if err != nil {
		return nil, nil, masonry.Result{}, err
	}
	for i, it := range placed {
		if it.Err != nil {
			r.Logger.Warn("measurement failed", "index", i, "id", it.Payload.ID, "err", it.Err)
		}
	}
	return l, placed, res, nil
}

// RenderWithCacheInfo renders every requested format and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap sink.Snapshot, itemsHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.LayoutKey(itemsHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(snap, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.LayoutKey(itemsHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render produces every requested format from snap without caching.
func Render(snap sink.Snapshot, opts Options) (map[string][]byte, error) {
	svgOpts := []sink.SVGOption{sink.WithTheme(Themes[opts.Theme])}
	if opts.ViewportHeight > 0 {
		svgOpts = append(svgOpts, sink.WithViewport(opts.ViewportTop, opts.ViewportHeight))
	}
	jsonOpts := []sink.JSONOption{sink.WithJSONSource(opts.Source), sink.WithJSONIndent()}
	if opts.Bodies {
		jsonOpts = append(jsonOpts, sink.WithJSONBodies())
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(snap, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(snap, sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(snap, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(snap, jsonOpts...)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// HashItems returns a content hash of items for cache keys.
func HashItems(items []feed.Item) string {
	data, _ := json.Marshal(items)
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

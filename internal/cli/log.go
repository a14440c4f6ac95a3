// Package cli implements the waterfall command-line interface.
//
// This package provides commands for generating and serving card feeds,
// rendering static masonry layouts, browsing a feed in a virtualized
// terminal view and managing the page cache. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Write a synthetic item file
//   - layout: Lay out an item file or feed and render SVG, PNG, PDF or JSON
//   - browse: Scroll a feed interactively, loading pages on demand
//   - serve: Serve an item file or MongoDB collection as a paged feed
//   - cache: Manage the page and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs observability events. Loggers are passed through context.Context to
// allow structured progress tracking.
//
// # Configuration
//
// --config names a TOML file whose values become flag defaults; see [Config].
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waterfall/pkg/core/window"
	"github.com/matzehuels/waterfall/pkg/observability"
)

// newLogger returns the CLI logger writing to w at level, with
// "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command stage. It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time, e.g.
//
//	14:32:01.45 INFO Laid out feed items=120 failed=0 height=4410 elapsed=12ms
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

// logWindowStats writes the final counters of a browse session.
func logWindowStats(l *log.Logger, s window.Stats) {
	l.Debug("window closed",
		"items", s.Items,
		"height", s.TotalHeight,
		"passes", s.Passes,
		"created", s.Created,
		"reused", s.Reused,
		"evicted", s.Evicted,
		"loads", s.Loads,
		"load_failures", s.LoadFailures,
	)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports window, pipeline, cache and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

// registerLogHooks installs logHooks for every observability category.
func registerLogHooks(l *log.Logger) {
	h := &logHooks{logger: l.WithPrefix("hooks")}
	observability.SetWindowHooks(h)
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *logHooks) OnLayout(_ context.Context, mode string, items int, d time.Duration, err error) {
	h.logger.Debug("layout", "mode", mode, "items", items, "duration", d, "err", err)
}

func (h *logHooks) OnScrollPass(_ context.Context, start, end, mounted, unmounted int) {
	h.logger.Debug("scroll pass", "start", start, "end", end, "mounted", mounted, "unmounted", unmounted)
}

func (h *logHooks) OnPoolEvict(_ context.Context, evicted, poolSize int) {
	h.logger.Debug("pool evict", "evicted", evicted, "pool", poolSize)
}

func (h *logHooks) OnLoadMore(_ context.Context, items int, d time.Duration, err error) {
	h.logger.Debug("load more", "items", items, "duration", d, "err", err)
}

func (h *logHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h *logHooks) OnLoadComplete(_ context.Context, source string, items int, d time.Duration, err error) {
	h.logger.Debug("load complete", "source", source, "items", items, "duration", d, "err", err)
}

func (h *logHooks) OnLayoutStart(_ context.Context, columns, items int) {
	h.logger.Debug("layout start", "columns", columns, "items", items)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, columns int, d time.Duration, err error) {
	h.logger.Debug("layout complete", "columns", columns, "duration", d, "err", err)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render complete", "formats", formats, "duration", d, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("request failed", "method", method, "host", host, "path", path, "err", err)
}

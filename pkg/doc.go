// Package pkg provides the libraries behind waterfall, a virtualized
// masonry feed.
//
// # Overview
//
// Waterfall places variable-height cards into balanced columns and keeps
// only the cards near the viewport materialized while the user scrolls.
// The pkg directory is organized into three areas:
//
//  1. [core] - The windowing engine: range finding, pacing, masonry layout,
//     visibility tracking and the window manager that ties them together
//  2. Feed plumbing - item files, stores, the HTTP feed server and client,
//     page caching and retries
//  3. Outputs - static renders of a whole feed and the terminal host
//
// # Architecture
//
// Interactive hosts drive the window manager:
//
//	feed.Pager (file, MongoDB or HTTP feed)
//	         ↓ load more
//	window.Manager ── masonry.Layout, visible.Index, pacing.Throttle
//	         ↓ mount / unmount
//	window.Container (term.Canvas in the CLI)
//
// Batch outputs run the same layout over a whole collection:
//
//	pipeline.Runner: Load → masonry.Batch → sink.RenderSVG / RenderJSON / ...
//
// # Core Packages
//
//   - [core/visible]: Binary search for the item range inside a viewport
//   - [core/pacing]: Throttle and debounce over an injectable clock
//   - [core/masonry]: Greedy least-loaded column layout and measurement
//   - [core/visibility]: Geometric intersection tracking for markers
//   - [core/window]: The window manager, its handle pool and container contract
//
// # Feed and Infrastructure
//
//   - [feed]: Items, generators, stores, the chi feed server, client and pager
//   - [cache]: File, Redis and null caches with namespaced keys
//   - [httputil]: JSON fetching, status mapping and retries
//   - [errors]: Structured error codes
//   - [observability]: Hook registry for window, pipeline, cache and HTTP events
//
// # Outputs
//
//   - [pipeline]: Load → layout → render orchestration with artifact caching
//   - [render/sink]: SVG, PNG, PDF and JSON renderers for a laid-out snapshot
//   - [term]: lipgloss cards and a terminal canvas implementing window.Container
//
// [core]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/core
// [core/visible]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/core/visible
// [core/pacing]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/core/pacing
// [core/masonry]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/core/masonry
// [core/visibility]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/core/visibility
// [core/window]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/core/window
// [feed]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/feed
// [cache]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/pipeline
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/render/sink
// [term]: https://pkg.go.dev/github.com/matzehuels/waterfall/pkg/term
package pkg

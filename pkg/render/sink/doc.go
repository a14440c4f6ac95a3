// Package sink writes a laid-out waterfall to output formats.
//
// A [Snapshot] captures the geometry of a [masonry.Layout] together with
// the feed items placed on it. Sinks turn a snapshot into:
//
//   - SVG: one rounded card per item, title and tags, optional viewport band
//   - JSON: the geometry for external tools
//   - PDF and PNG: SVG converted with rsvg-convert
//
// Basic usage:
//
//	snap := sink.NewSnapshot(layout, width, items)
//	svg := sink.RenderSVG(snap,
//	    sink.WithTheme(sink.DarkTheme),
//	    sink.WithViewport(0, 600),
//	)
//	data, err := sink.RenderJSON(snap, sink.WithJSONBodies())
package sink

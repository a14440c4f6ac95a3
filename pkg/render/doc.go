// Package render converts rendered layouts between output formats.
//
// The [sink] subpackage turns a laid-out waterfall into SVG or JSON. The
// [ToPDF] and [ToPNG] functions convert any SVG using the external
// rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(snap)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// Install librsvg with brew install librsvg (macOS) or
// apt install librsvg2-bin (Linux).
package render

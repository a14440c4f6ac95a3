package sink

import "github.com/matzehuels/waterfall/pkg/render"

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the snapshot as PNG via SVG conversion.
func RenderPNG(s Snapshot, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	return render.ToPNG(RenderSVG(s, r.svgOpts...), r.scale)
}

// RenderPDF renders the snapshot as PDF via SVG conversion.
func RenderPDF(s Snapshot, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(RenderSVG(s, opts...))
}

package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/waterfall/pkg/core/visibility"
)

// Theme holds the SVG colors.
type Theme struct {
	Background string
	Card       string
	Border     string
	Title      string
	Tag        string
	Failed     string
	Visible    string
}

// Built-in themes.
var (
	LightTheme = Theme{
		Background: "#fafafa",
		Card:       "#ffffff",
		Border:     "#d0d7de",
		Title:      "#1f2328",
		Tag:        "#6e7781",
		Failed:     "#cf222e",
		Visible:    "#0969da",
	}
	DarkTheme = Theme{
		Background: "#0d1117",
		Card:       "#161b22",
		Border:     "#30363d",
		Title:      "#e6edf3",
		Tag:        "#8b949e",
		Failed:     "#f85149",
		Visible:    "#58a6ff",
	}
)

const (
	titleSize   = 14.0
	tagSize     = 11.0
	charWidth   = 0.55
	cardPadding = 8
	cardRadius  = 6
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme    Theme
	margin   int
	viewTop  int
	viewSize int
	viewport bool
}

// WithTheme sets the colors. The default is LightTheme.
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithMargin sets the space around the layout. The default is 16.
func WithMargin(m int) SVGOption { return func(r *svgRenderer) { r.margin = max(m, 0) } }

// WithViewport shades the region [top, top+size) and outlines every card
// that is visible there by the same threshold the window manager uses for
// its viewport-entry marker.
func WithViewport(top, size int) SVGOption {
	return func(r *svgRenderer) {
		r.viewTop, r.viewSize, r.viewport = top, size, true
	}
}

// RenderSVG draws the snapshot.
func RenderSVG(s Snapshot, opts ...SVGOption) []byte {
	r := svgRenderer{theme: LightTheme, margin: 16}
	for _, opt := range opts {
		opt(&r)
	}

	w := s.Width + 2*r.margin
	h := max(s.Height, 0) + 2*r.margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="%s"/>`+"\n", w, h, r.theme.Background)
	fmt.Fprintf(&buf, `  <g transform="translate(%d %d)" font-family="sans-serif">`+"\n", r.margin, r.margin)

	if r.viewport {
		fmt.Fprintf(&buf, `    <rect class="viewport" x="0" y="%d" width="%d" height="%d" fill="%s" fill-opacity="0.08"/>`+"\n",
			r.viewTop, s.Width, r.viewSize, r.theme.Visible)
	}
	for _, c := range s.Cards {
		r.renderCard(&buf, c)
	}

	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderCard(buf *bytes.Buffer, c Card) {
	stroke, class := r.theme.Border, "card"
	switch {
	case c.Failed:
		stroke, class = r.theme.Failed, "card failed"
	case r.viewport && visibility.Ratio(c.Y, c.H, r.viewTop, r.viewSize) >= visibility.DefaultThreshold:
		stroke, class = r.theme.Visible, "card visible"
	}

	fmt.Fprintf(buf, `    <g class="%s" id="card-%d">`+"\n", class, c.Index)
	fmt.Fprintf(buf, `      <rect x="%d" y="%d" width="%d" height="%d" rx="%d" fill="%s" stroke="%s"/>`+"\n",
		c.X, c.Y, c.W, c.H, cardRadius, r.theme.Card, stroke)

	if c.H >= titleSize+cardPadding {
		writeText(buf, c.X+cardPadding, c.Y+cardPadding+int(titleSize), titleSize, r.theme.Title,
			truncate(c.Item.Title, c.W-2*cardPadding, titleSize))
	}
	if len(c.Item.Tags) > 0 && c.H >= 2*(titleSize+cardPadding) {
		tags := "#" + strings.Join(c.Item.Tags, " #")
		writeText(buf, c.X+cardPadding, c.Y+c.H-cardPadding, tagSize, r.theme.Tag,
			truncate(tags, c.W-2*cardPadding, tagSize))
	}
	buf.WriteString("    </g>\n")
}

func writeText(buf *bytes.Buffer, x, y int, size float64, fill, text string) {
	fmt.Fprintf(buf, `      <text x="%d" y="%d" font-size="%.0f" fill="%s">`, x, y, size, fill)
	_ = xml.EscapeText(buf, []byte(text))
	buf.WriteString("</text>\n")
}

// truncate shortens s to fit width at the given font size.
func truncate(s string, width int, size float64) string {
	maxChars := int(float64(width) / (size * charWidth))
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	if maxChars < 3 {
		return ""
	}
	return strings.TrimRight(string(runes[:maxChars-2]), " ") + ".."
}

package pipeline

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/feed"
)

// TextMeasurer estimates a card's pixel height from its text, using the
// same proportions as the SVG sink.
type TextMeasurer struct {
	TitleSize  float64 // title font size in px
	BodySize   float64 // body font size in px
	LineHeight float64 // line height as a multiple of font size
	Padding    int     // inner padding on every side
	CharWidth  float64 // average glyph width as a multiple of font size
	ImageRatio float64 // image height as a fraction of card width
}

// NewTextMeasurer returns a measurer matched to the default SVG styling.
func NewTextMeasurer() TextMeasurer {
	return TextMeasurer{
		TitleSize:  14,
		BodySize:   12,
		LineHeight: 1.4,
		Padding:    8,
		CharWidth:  0.55,
		ImageRatio: 0.75,
	}
}

// Measure implements masonry.Measurer.
func (m TextMeasurer) Measure(ctx context.Context, it feed.Item, width int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	inner := width - 2*m.Padding
	if inner <= 0 {
		return 0, errors.New(errors.ErrCodeMeasurement, "card width %d leaves no room for text", width)
	}

	h := float64(2 * m.Padding)
	h += float64(m.lines(it.Title, inner, m.TitleSize)) * m.TitleSize * m.LineHeight
	if it.Body != "" {
		h += float64(m.lines(it.Body, inner, m.BodySize)) * m.BodySize * m.LineHeight
	}
	if len(it.Tags) > 0 {
		h += m.BodySize * m.LineHeight
	}
	if it.Image != "" {
		h += float64(width) * m.ImageRatio
	}
	return int(math.Ceil(h)), nil
}

// lines counts wrapped lines for text at the given font size. Words wrap
// greedily; a word longer than a line is split.
func (m TextMeasurer) lines(text string, width int, size float64) int {
	perLine := max(1, int(float64(width)/(size*m.CharWidth)))
	n, used := 1, 0
	for _, w := range strings.Fields(text) {
		wl := utf8.RuneCountInString(w)
		switch {
		case used == 0:
			used = wl
		case used+1+wl <= perLine:
			used += 1 + wl
		default:
			n++
			used = wl
		}
		for used > perLine {
			n++
			used -= perLine
		}
	}
	return n
}

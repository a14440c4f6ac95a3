package term

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/waterfall/pkg/core/window"
	"github.com/matzehuels/waterfall/pkg/feed"
)

// MarkerInView is the marker name the browse UI uses for cards entering
// the viewport.
const MarkerInView = "in-view"

// MinCardWidth is the narrowest card that still has room for text.
const MinCardWidth = 5

var (
	colorBorder = lipgloss.Color("240")
	colorTitle  = lipgloss.Color("255")
	colorMarked = lipgloss.Color("36")
	colorBody   = lipgloss.Color("245")
	colorTag    = lipgloss.Color("75")
	colorImage  = lipgloss.Color("220")

	cardStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	titleMarkedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMarked).Underline(true)
	bodyStyle        = lipgloss.NewStyle().Foreground(colorBody)
	tagStyle         = lipgloss.NewStyle().Foreground(colorTag)
	imageStyle       = lipgloss.NewStyle().Foreground(colorImage)
)

// renderCard draws it as a bordered box exactly width cells wide.
func renderCard(it feed.Item, width int, marked bool) string {
	inner := max(width-4, 1)

	title := titleStyle
	if marked {
		title = titleMarkedStyle
	}
	parts := []string{title.Width(inner).Render(it.Title)}
	if it.Body != "" {
		parts = append(parts, bodyStyle.Width(inner).Render(it.Body))
	}
	if it.Image != "" {
		parts = append(parts, imageStyle.Width(inner).Render("[image]"))
	}
	if len(it.Tags) > 0 {
		parts = append(parts, tagStyle.Width(inner).Render("#"+strings.Join(it.Tags, " #")))
	}
	return cardStyle.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Card is the handle for one item. The viewport marker highlights its
// title, the first line a reader sees.
type Card struct {
	item feed.Item

	mu       sync.Mutex
	marked   bool
	released bool
	width    int
	lines    []string
}

// NewCard returns an unrendered card for it.
func NewCard(it feed.Item) *Card {
	return &Card{item: it}
}

// Render is a window.RenderFunc for feed items.
func Render(it feed.Item) window.Handle {
	return NewCard(it)
}

// Item returns the card's payload.
func (c *Card) Item() feed.Item { return c.item }

// SetMarker implements window.Marker.
func (c *Card) SetMarker(_ string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.marked != on {
		c.marked = on
		c.lines = nil
	}
}

// Marked reports whether the viewport marker is set.
func (c *Card) Marked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.marked
}

// Release implements window.Releaser.
func (c *Card) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = true
	c.lines = nil
}

// Released reports whether the card has been evicted for good.
func (c *Card) Released() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// Lines returns the card rendered at width, one string per row. The
// result is cached until the width or the marker changes.
func (c *Card) Lines(width int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lines == nil || c.width != width {
		c.width = width
		c.lines = strings.Split(renderCard(c.item, width, c.marked), "\n")
	}
	return c.lines
}

var (
	_ window.Marker   = (*Card)(nil)
	_ window.Releaser = (*Card)(nil)
	_ Painter         = (*Card)(nil)
)

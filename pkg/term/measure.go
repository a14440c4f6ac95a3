package term

import (
	"context"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/waterfall/pkg/core/masonry"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/feed"
)

type measureKey struct {
	id    string
	width int
}

// Measurer reports the number of rows a card occupies. Results are
// memoized per item ID and width, so a relayout at a width seen before
// costs no rendering.
type Measurer struct {
	mu      sync.Mutex
	heights map[measureKey]int
}

// NewMeasurer returns an empty Measurer.
func NewMeasurer() *Measurer {
	return &Measurer{heights: make(map[measureKey]int)}
}

// Measure implements masonry.Measurer.
func (m *Measurer) Measure(ctx context.Context, it feed.Item, width int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if width < MinCardWidth {
		return 0, errors.New(errors.ErrCodeMeasurement, "column width %d is below %d cells", width, MinCardWidth)
	}

	k := measureKey{id: it.ID, width: width}
	m.mu.Lock()
	h, ok := m.heights[k]
	m.mu.Unlock()
	if ok {
		return h, nil
	}

	h = lipgloss.Height(renderCard(it, width, false))
	m.mu.Lock()
	m.heights[k] = h
	m.mu.Unlock()
	return h, nil
}

// Len returns the number of memoized measurements.
func (m *Measurer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.heights)
}

var _ masonry.Measurer[feed.Item] = (*Measurer)(nil)

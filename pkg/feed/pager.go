package feed

import (
	"context"
	"sync"
)

// Pager walks a PageSource sequentially.
type Pager struct {
	src  PageSource
	size int

	mu     sync.Mutex
	offset int
	done   bool
}

// NewPager starts at offset and requests size items per page. A size
// outside [1, MaxPageSize] becomes DefaultPageSize.
func NewPager(src PageSource, offset, size int) *Pager {
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return &Pager{src: src, size: size, offset: max(offset, 0)}
}

// Next returns the next page and advances the cursor. Once a short page
// has been seen it returns an empty slice without calling the source.
// A failed fetch leaves the cursor where it was.
func (p *Pager) Next(ctx context.Context) ([]Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return nil, nil
	}
	items, err := p.src.Page(ctx, p.offset, p.size)
	if err != nil {
		return nil, err
	}
	p.offset += len(items)
	if len(items) < p.size {
		p.done = true
	}
	return items, nil
}

// Offset is the position of the next item Next will return.
func (p *Pager) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

// Done reports whether the source has been exhausted.
func (p *Pager) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

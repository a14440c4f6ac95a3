package feed

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/waterfall/pkg/errors"
)

// PageSource returns up to limit items starting at offset. A short or
// empty page means the source is exhausted.
type PageSource interface {
	Page(ctx context.Context, offset, limit int) ([]Item, error)
}

// Store is a PageSource that also knows its size.
type Store interface {
	PageSource
	Len(ctx context.Context) (int, error)
}

// MemoryStore serves items from memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemoryStore returns a store over a copy of items.
func NewMemoryStore(items []Item) *MemoryStore {
	return &MemoryStore{items: slices.Clone(items)}
}

// Append adds items to the end of the store.
func (s *MemoryStore) Append(items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Page implements PageSource.
func (s *MemoryStore) Page(_ context.Context, offset, limit int) ([]Item, error) {
	if err := checkPage(offset, limit); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset >= len(s.items) {
		return []Item{}, nil
	}
	end := min(offset+limit, len(s.items))
	return slices.Clone(s.items[offset:end]), nil
}

// Len implements Store.
func (s *MemoryStore) Len(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// MaxPageSize caps a single page request.
const MaxPageSize = 500

func checkPage(offset, limit int) error {
	if offset < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "offset must be >= 0, got %d", offset)
	}
	if limit < 1 || limit > MaxPageSize {
		return errors.New(errors.ErrCodeInvalidInput, "limit must be in [1, %d], got %d", MaxPageSize, limit)
	}
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MongoStore)(nil)

	_ PageSource = Generator{}
)

package window

import "container/list"

// Pool parks unmounted handles by item index in insertion order so the
// oldest can be evicted first.
type Pool struct {
	order   *list.List
	entries map[int]*list.Element
}

type pooled struct {
	index  int
	handle Handle
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{order: list.New(), entries: make(map[int]*list.Element)}
}

// Put parks h for index. Re-parking an index replaces its handle and moves
// it to the newest position.
func (p *Pool) Put(index int, h Handle) {
	if el, ok := p.entries[index]; ok {
		el.Value = pooled{index: index, handle: h}
		p.order.MoveToBack(el)
		return
	}
	p.entries[index] = p.order.PushBack(pooled{index: index, handle: h})
}

// Take removes and returns the handle parked for index.
func (p *Pool) Take(index int) (Handle, bool) {
	el, ok := p.entries[index]
	if !ok {
		return nil, false
	}
	delete(p.entries, index)
	p.order.Remove(el)
	return el.Value.(pooled).handle, true
}

// Has reports whether a handle is parked for index.
func (p *Pool) Has(index int) bool {
	_, ok := p.entries[index]
	return ok
}

// Len returns the number of parked handles.
func (p *Pool) Len() int { return len(p.entries) }

// Indices returns the parked indices from oldest to newest.
func (p *Pool) Indices() []int {
	out := make([]int, 0, len(p.entries))
	for el := p.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(pooled).index)
	}
	return out
}

// Trim evicts the oldest handles until at most limit remain and returns
// them. Indices for which skip reports true are left in place.
func (p *Pool) Trim(limit int, skip func(index int) bool) []Handle {
	var evicted []Handle
	for el := p.order.Front(); el != nil && len(p.entries) > limit; {
		next := el.Next()
		e := el.Value.(pooled)
		if skip == nil || !skip(e.index) {
			delete(p.entries, e.index)
			p.order.Remove(el)
			evicted = append(evicted, e.handle)
		}
		el = next
	}
	return evicted
}

// Drain empties the pool and returns every handle, oldest first.
func (p *Pool) Drain() []Handle {
	out := make([]Handle, 0, len(p.entries))
	for el := p.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(pooled).handle)
	}
	p.order.Init()
	clear(p.entries)
	return out
}

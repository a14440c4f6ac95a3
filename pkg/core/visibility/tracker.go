// Package visibility tracks which boxes intersect a vertical viewport and
// reports entry into and exit from the intersecting state.
//
// A box is inside when the fraction of its height overlapping the viewport
// reaches the tracker's threshold. Callbacks fire on transitions only, so a
// box that stays inside across many updates gets one onEnter call.
package visibility

import "sort"

// DefaultThreshold is the intersection ratio at which a box counts as visible.
const DefaultThreshold = 0.1

// Tracker is a geometric intersection observer.
//
// Tracker is not safe for concurrent use; callers serialize access.
type Tracker struct {
	threshold float64
	entries   map[int]*entry
}

type entry struct {
	top, height int
	inside      bool
	onEnter     func()
	onExit      func()
}

// NewTracker returns a tracker using threshold, or [DefaultThreshold] when
// threshold is not in (0, 1].
func NewTracker(threshold float64) *Tracker {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Tracker{threshold: threshold, entries: make(map[int]*entry)}
}

// Threshold returns the intersection ratio in use.
func (t *Tracker) Threshold() float64 { return t.threshold }

// Observe registers the box for id or updates its geometry and callbacks.
// An updated box keeps its inside state; the next Update re-evaluates it.
func (t *Tracker) Observe(id, top, height int, onEnter, onExit func()) {
	if e, ok := t.entries[id]; ok {
		e.top, e.height = top, height
		e.onEnter, e.onExit = onEnter, onExit
		return
	}
	t.entries[id] = &entry{top: top, height: height, onEnter: onEnter, onExit: onExit}
}

// Unobserve removes id. If the box was inside, its onExit fires.
func (t *Tracker) Unobserve(id int) {
	e, ok := t.entries[id]
	if !ok {
		return
	}
	delete(t.entries, id)
	if e.inside && e.onExit != nil {
		e.onExit()
	}
}

// Len returns the number of observed boxes.
func (t *Tracker) Len() int { return len(t.entries) }

// Inside reports whether id is currently in the intersecting state.
func (t *Tracker) Inside(id int) bool {
	e, ok := t.entries[id]
	return ok && e.inside
}

// Update re-evaluates every box against the viewport [top, top+height] and
// fires transition callbacks in ascending id order.
func (t *Tracker) Update(top, height int) {
	ids := make([]int, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		e := t.entries[id]
		in := Ratio(e.top, e.height, top, height) >= t.threshold
		switch {
		case in && !e.inside:
			e.inside = true
			if e.onEnter != nil {
				e.onEnter()
			}
		case !in && e.inside:
			e.inside = false
			if e.onExit != nil {
				e.onExit()
			}
		}
	}
}

// Ratio returns the fraction of the box [top, top+height] that overlaps the
// viewport [viewTop, viewTop+viewHeight]. A zero-height box is fully visible
// when it lies within the viewport.
func Ratio(top, height, viewTop, viewHeight int) float64 {
	viewBottom := viewTop + viewHeight
	if height <= 0 {
		if top >= viewTop && top <= viewBottom {
			return 1
		}
		return 0
	}
	overlap := min(top+height, viewBottom) - max(top, viewTop)
	if overlap <= 0 {
		return 0
	}
	return float64(overlap) / float64(height)
}

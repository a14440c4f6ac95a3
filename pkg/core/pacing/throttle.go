package pacing

import (
	"sync"
	"time"
)

// Throttle invokes a function at most once per wait interval.
type Throttle struct {
	mu       sync.Mutex
	fn       func()
	wait     time.Duration
	clock    Clock
	leading  bool
	trailing bool

	timer    Timer
	previous time.Time
	gen      uint64
}

var _ Limiter = (*Throttle)(nil)

// NewThrottle wraps fn so that it runs at most once per wait.
func NewThrottle(fn func(), wait time.Duration, opts ...Option) *Throttle {
	o := newOptions(opts)
	return &Throttle{
		fn:       fn,
		wait:     wait,
		clock:    o.clock,
		leading:  o.leading,
		trailing: o.trailing,
	}
}

// Call records an event.
func (t *Throttle) Call() {
	t.mu.Lock()
	now := t.clock.Now()
	if t.previous.IsZero() && !t.leading {
		t.previous = now
	}
	remaining := t.wait - now.Sub(t.previous)

	// remaining > wait means the clock went backwards.
	if remaining <= 0 || remaining > t.wait {
		t.stopLocked()
		t.previous = now
		t.mu.Unlock()
		t.fn()
		return
	}
	if t.timer == nil && t.trailing {
		t.gen++
		gen := t.gen
		t.timer = t.clock.AfterFunc(remaining, func() { t.later(gen) })
	}
	t.mu.Unlock()
}

func (t *Throttle) later(gen uint64) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	if t.leading {
		t.previous = t.clock.Now()
	} else {
		t.previous = time.Time{}
	}
	t.timer = nil
	t.mu.Unlock()
	t.fn()
}

// Cancel drops a pending trailing call and resets the window, so the next
// Call behaves like the first one.
func (t *Throttle) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.previous = time.Time{}
}

// Pending reports whether a trailing call is scheduled.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}

func (t *Throttle) stopLocked() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

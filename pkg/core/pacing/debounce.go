package pacing

import (
	"sync"
	"time"
)

// Debounce invokes a function once calls have stopped for a full delay.
type Debounce struct {
	mu        sync.Mutex
	fn        func()
	delay     time.Duration
	clock     Clock
	immediate bool

	timer  Timer
	called bool
	gen    uint64
}

var _ Limiter = (*Debounce)(nil)

// NewDebounce wraps fn so that it runs only after delay has passed without
// another Call.
func NewDebounce(fn func(), delay time.Duration, opts ...Option) *Debounce {
	o := newOptions(opts)
	return &Debounce{
		fn:        fn,
		delay:     delay,
		clock:     o.clock,
		immediate: o.immediate,
	}
}

// Call records an event and restarts the quiet period.
func (d *Debounce) Call() {
	d.mu.Lock()
	fireNow := d.immediate && d.timer == nil && !d.called
	if fireNow {
		d.called = true
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
	d.mu.Unlock()

	if fireNow {
		d.fn()
	}
}

func (d *Debounce) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.called = false
	run := !d.immediate
	d.mu.Unlock()

	if run {
		d.fn()
	}
}

// Cancel discards the pending invocation.
func (d *Debounce) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.called = false
	d.gen++
}

// Pending reports whether the quiet-period timer is running.
func (d *Debounce) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

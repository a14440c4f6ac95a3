package pacing

import (
	"sync/atomic"
	"testing"
	"time"
)

func newTestClock() *ManualClock {
	return NewManualClock(time.Unix(1_700_000_000, 0))
}

func TestThrottleLeadingAndTrailing(t *testing.T) {
	clock := newTestClock()
	var calls atomic.Int32
	th := NewThrottle(func() { calls.Add(1) }, 100*time.Millisecond, WithClock(clock))

	th.Call()
	if got := calls.Load(); got != 1 {
		t.Fatalf("after leading call: calls = %d, want 1", got)
	}

	clock.Advance(10 * time.Millisecond)
	th.Call()
	clock.Advance(10 * time.Millisecond)
	th.Call()
	if got := calls.Load(); got != 1 {
		t.Errorf("inside window: calls = %d, want 1", got)
	}
	if !th.Pending() {
		t.Error("Pending() = false, want true while trailing call is scheduled")
	}

	clock.Advance(80 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Errorf("after window: calls = %d, want 2", got)
	}
	if th.Pending() {
		t.Error("Pending() = true after trailing call fired")
	}
}

func TestThrottleWithoutLeading(t *testing.T) {
	clock := newTestClock()
	var calls atomic.Int32
	th := NewThrottle(func() { calls.Add(1) }, 100*time.Millisecond, WithClock(clock), WithLeading(false))

	th.Call()
	if got := calls.Load(); got != 0 {
		t.Fatalf("calls = %d, want 0 without leading edge", got)
	}
	clock.Advance(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 after trailing edge", got)
	}
}

func TestThrottleWithoutTrailing(t *testing.T) {
	clock := newTestClock()
	var calls atomic.Int32
	th := NewThrottle(func() { calls.Add(1) }, 100*time.Millisecond, WithClock(clock), WithTrailing(false))

	th.Call()
	clock.Advance(50 * time.Millisecond)
	th.Call()
	clock.Advance(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1: swallowed call must not fire later", got)
	}

	th.Call()
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2 once the window has passed", got)
	}
}

func TestThrottleAtMostOncePerInterval(t *testing.T) {
	clock := newTestClock()
	var calls atomic.Int32
	th := NewThrottle(func() { calls.Add(1) }, 100*time.Millisecond, WithClock(clock))

	// 1s of events every 5ms.
	for range 200 {
		th.Call()
		clock.Advance(5 * time.Millisecond)
	}
	clock.Advance(time.Second)

	if got := calls.Load(); got < 10 || got > 11 {
		t.Errorf("calls = %d, want 10 or 11 for 1s at a 100ms interval", got)
	}
}

func TestThrottleCancel(t *testing.T) {
	clock := newTestClock()
	var calls atomic.Int32
	th := NewThrottle(func() { calls.Add(1) }, 100*time.Millisecond, WithClock(clock))

	th.Call()
	th.Call()
	th.Cancel()
	clock.Advance(time.Second)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1: cancelled trailing call fired", got)
	}

	th.Call()
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2: Cancel should reset the window", got)
	}
}

func TestDebounce(t *testing.T) {
	clock := newTestClock()
	var calls atomic.Int32
	d := NewDebounce(func() { calls.Add(1) }, 200*time.Millisecond, WithClock(clock))

	d.Call()
	clock.Advance(100 * time.Millisecond)
	d.Call()
	clock.Advance(150 * time.Millisecond)
	d.Call()
	if got := calls.Load(); got != 0 {
		t.Fatalf("calls = %d, want 0 during a storm", got)
	}

	clock.Advance(199 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("calls = %d, want 0 before the quiet period ends", got)
	}
	clock.Advance(time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 after the quiet period", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after firing")
	}
}

func TestDebounceImmediate(t *testing.T) {
	clock := newTestClock()
	var calls atomic.Int32
	d := NewDebounce(func() { calls.Add(1) }, 200*time.Millisecond, WithClock(clock), WithImmediate())

	d.Call()
	d.Call()
	d.Call()
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1 on the leading call", got)
	}
	clock.Advance(time.Second)
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1: immediate mode has no trailing call", got)
	}

	d.Call()
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2 for a new burst", got)
	}
}

func TestDebounceCancel(t *testing.T) {
	clock := newTestClock()
	var calls atomic.Int32
	d := NewDebounce(func() { calls.Add(1) }, 200*time.Millisecond, WithClock(clock))

	d.Call()
	d.Cancel()
	clock.Advance(time.Second)
	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0 after Cancel", got)
	}
	if clock.Pending() != 0 {
		t.Errorf("clock.Pending() = %d, want 0", clock.Pending())
	}
}

func TestManualClockOrdering(t *testing.T) {
	clock := newTestClock()
	var order []int
	clock.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, 2) })
	stopped := clock.AfterFunc(20*time.Millisecond, func() { order = append(order, 99) })

	if !stopped.Stop() {
		t.Error("Stop() = false for a pending timer")
	}
	clock.Advance(time.Second)

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
	if stopped.Stop() {
		t.Error("Stop() = true for a stopped timer")
	}
}

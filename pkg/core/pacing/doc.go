// Package pacing rate-limits expensive callbacks.
//
// Two modes share one abstraction, [Limiter]:
//
//   - [Throttle] fires at most once per interval. Leading and trailing
//     invocations are configurable: leading fires on the first call of a
//     window, trailing fires once more after the window closes if further
//     calls arrived in between.
//   - [Debounce] fires only after calls stop arriving for the full delay.
//     With [WithImmediate] it fires on the first call of a burst instead.
//
// Both are driven by a [Clock] so they can be exercised without real timers:
//
//	clock := pacing.NewManualClock(time.Unix(0, 0))
//	t := pacing.NewThrottle(onScroll, 100*time.Millisecond, pacing.WithClock(clock))
//	t.Call()                               // leading edge fires
//	t.Call()                               // swallowed, trailing scheduled
//	clock.Advance(100 * time.Millisecond)  // trailing edge fires
//
// Limiters are safe for concurrent use. The wrapped function is always
// invoked without any internal lock held.
package pacing

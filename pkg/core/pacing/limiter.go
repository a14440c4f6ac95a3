package pacing

// Limiter is the common surface of [Throttle] and [Debounce].
type Limiter interface {
	// Call records one event. Whether and when the wrapped function runs
	// depends on the mode.
	Call()
	// Cancel discards any pending invocation and resets the window.
	Cancel()
	// Pending reports whether an invocation is scheduled.
	Pending() bool
}

// Option configures a limiter.
type Option func(*options)

type options struct {
	clock     Clock
	leading   bool
	trailing  bool
	immediate bool
}

func newOptions(opts []Option) options {
	o := options{clock: SystemClock{}, leading: true, trailing: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = SystemClock{}
	}
	return o
}

// WithClock sets the time source. Defaults to [SystemClock].
func WithClock(c Clock) Option { return func(o *options) { o.clock = c } }

// WithLeading controls whether a throttle fires on the first call of a
// window. Defaults to true.
func WithLeading(on bool) Option { return func(o *options) { o.leading = on } }

// WithTrailing controls whether a throttle fires once more after the window
// closes when calls arrived during it. Defaults to true.
func WithTrailing(on bool) Option { return func(o *options) { o.trailing = on } }

// WithImmediate makes a debounce fire on the leading call of a burst and
// stay quiet until the burst has settled.
func WithImmediate() Option { return func(o *options) { o.immediate = true } }

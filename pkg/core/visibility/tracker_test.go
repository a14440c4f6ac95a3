package visibility

import (
	"slices"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name                       string
		top, height, vTop, vHeight int
		want                       float64
	}{
		{"fully inside", 10, 20, 0, 100, 1},
		{"above", 0, 10, 50, 100, 0},
		{"below", 200, 10, 0, 100, 0},
		{"touching edge", 100, 10, 0, 100, 0},
		{"half overlap", 90, 20, 0, 100, 0.5},
		{"taller than viewport", -50, 200, 0, 100, 0.5},
		{"zero height inside", 40, 0, 0, 100, 1},
		{"zero height outside", 140, 0, 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.top, tt.height, tt.vTop, tt.vHeight); got != tt.want {
				t.Errorf("Ratio() = %v, want %v", got, tt.want)
			}
		})
	}
}

type recorder struct{ events []string }

func (r *recorder) callbacks(name string) (func(), func()) {
	return func() { r.events = append(r.events, "+"+name) },
		func() { r.events = append(r.events, "-"+name) }
}

func TestTrackerTransitions(t *testing.T) {
	var r recorder
	tr := NewTracker(0.1)

	enter, exit := r.callbacks("a")
	tr.Observe(1, 0, 100, enter, exit)
	enter, exit = r.callbacks("b")
	tr.Observe(2, 300, 100, enter, exit)

	tr.Update(0, 200)
	tr.Update(10, 200) // no transition
	tr.Update(250, 200)

	want := []string{"+a", "-a", "+b"}
	if !slices.Equal(r.events, want) {
		t.Errorf("events = %v, want %v", r.events, want)
	}
	if tr.Inside(1) || !tr.Inside(2) {
		t.Errorf("Inside(1)=%v Inside(2)=%v, want false true", tr.Inside(1), tr.Inside(2))
	}
}

func TestTrackerThreshold(t *testing.T) {
	var r recorder
	tr := NewTracker(0.1)
	enter, exit := r.callbacks("a")
	tr.Observe(1, 95, 100, enter, exit)

	tr.Update(0, 100) // 5% visible
	if len(r.events) != 0 {
		t.Fatalf("events at 5%% = %v, want none", r.events)
	}
	tr.Update(5, 100) // 10% visible
	if !slices.Equal(r.events, []string{"+a"}) {
		t.Errorf("events at 10%% = %v, want [+a]", r.events)
	}
}

func TestTrackerUnobserveFiresExitWhenInside(t *testing.T) {
	var r recorder
	tr := NewTracker(0)
	if tr.Threshold() != DefaultThreshold {
		t.Errorf("Threshold() = %v, want %v", tr.Threshold(), DefaultThreshold)
	}

	enter, exit := r.callbacks("a")
	tr.Observe(1, 0, 10, enter, exit)
	enter, exit = r.callbacks("b")
	tr.Observe(2, 500, 10, enter, exit)
	tr.Update(0, 100)

	tr.Unobserve(1)
	tr.Unobserve(2)
	tr.Unobserve(3)

	want := []string{"+a", "-a"}
	if !slices.Equal(r.events, want) {
		t.Errorf("events = %v, want %v", r.events, want)
	}
	if tr.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tr.Len())
	}
}

func TestTrackerObserveUpdatesGeometry(t *testing.T) {
	var r recorder
	tr := NewTracker(0.5)
	enter, exit := r.callbacks("a")
	tr.Observe(1, 0, 100, enter, exit)
	tr.Update(0, 100)

	// Moving the box out of view keeps it inside until the next update.
	tr.Observe(1, 400, 100, enter, exit)
	if !tr.Inside(1) {
		t.Fatal("Inside(1) = false before update, want true")
	}
	tr.Update(0, 100)

	want := []string{"+a", "-a"}
	if !slices.Equal(r.events, want) {
		t.Errorf("events = %v, want %v", r.events, want)
	}
}

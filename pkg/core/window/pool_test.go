package window

import (
	"slices"
	"testing"
)

func TestPoolPutTake(t *testing.T) {
	p := NewPool()
	p.Put(3, "a")
	p.Put(1, "b")

	if p.Len() != 2 || !p.Has(3) {
		t.Fatalf("Len()=%d Has(3)=%v, want 2 true", p.Len(), p.Has(3))
	}
	h, ok := p.Take(3)
	if !ok || h != "a" {
		t.Errorf("Take(3) = %v, %v, want a, true", h, ok)
	}
	if _, ok := p.Take(3); ok {
		t.Error("Take(3) twice should miss")
	}
	if got := p.Indices(); !slices.Equal(got, []int{1}) {
		t.Errorf("Indices() = %v, want [1]", got)
	}
}

func TestPoolRePutMovesToNewest(t *testing.T) {
	p := NewPool()
	for i := range 3 {
		p.Put(i, i)
	}
	p.Put(0, "again")

	if got := p.Indices(); !slices.Equal(got, []int{1, 2, 0}) {
		t.Errorf("Indices() = %v, want [1 2 0]", got)
	}
	if h, _ := p.Take(0); h != "again" {
		t.Errorf("Take(0) = %v, want again", h)
	}
}

func TestPoolTrimEvictsOldestFirst(t *testing.T) {
	p := NewPool()
	for i := range 295 {
		p.Put(i, i)
	}
	for i := 295; i < 315; i++ {
		p.Put(i, i)
	}

	evicted := p.Trim(300, nil)
	if len(evicted) != 15 {
		t.Fatalf("Trim() evicted %d, want 15", len(evicted))
	}
	for i, h := range evicted {
		if h != i {
			t.Errorf("evicted[%d] = %v, want %d", i, h, i)
		}
	}
	if p.Len() != 300 {
		t.Errorf("Len() = %d, want 300", p.Len())
	}
	if got := p.Indices()[0]; got != 15 {
		t.Errorf("oldest remaining = %d, want 15", got)
	}
}

func TestPoolTrimSkips(t *testing.T) {
	p := NewPool()
	for i := range 5 {
		p.Put(i, i)
	}
	skip := func(i int) bool { return i == 0 || i == 2 }

	evicted := p.Trim(2, skip)
	if !slices.Equal(evicted, []Handle{1, 3, 4}) {
		t.Errorf("Trim() = %v, want [1 3 4]", evicted)
	}
	if got := p.Indices(); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("Indices() = %v, want [0 2]", got)
	}
}

func TestPoolDrain(t *testing.T) {
	p := NewPool()
	p.Put(7, "x")
	p.Put(8, "y")

	if got := p.Drain(); !slices.Equal(got, []Handle{"x", "y"}) {
		t.Errorf("Drain() = %v, want [x y]", got)
	}
	if p.Len() != 0 || p.Has(7) {
		t.Errorf("pool not empty after Drain: Len()=%d", p.Len())
	}
}

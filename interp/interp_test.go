package interp

import (
	"testing"
)

func TestL(t *testing.T) {
	for _, c := range []struct {
		a, b, c float32
		out     float32
	}{{
		a:   0.5,
		b:   0,
		c:   1.0,
		out: 0,
	}, {
		a:   0.5,
		b:   -0.5,
		c:   0.5,
		out: 0,
	}, {
		a:   -0.25,
		b:   0.75,
		c:   0,
		out: -0.25,
	}, {
		a:   1,
		b:   3,
		c:   0.25,
		out: 1.5,
	}} {
		got := L(c.a, c.b, c.c)
		if got != c.out {
			t.Errorf("L(%v, %v, %v) = %v, want: %v", c.a, c.b, c.c, got, c.out)
		}
	}
}

func TestAt(t *testing.T) {
	tab := []float64{0, 1, 2, 3}
	for _, c := range []struct {
		pos, out float64
	}{
		{0, 0},
		{1.5, 1.5},
		{3, 3},
		{3.5, 1.5}, // halfway between the last and the first
		{4, 0},
		{5.25, 1.25},
	} {
		if got := At(tab, c.pos); got != c.out {
			t.Errorf("At(%v, %v) = %v, want: %v", tab, c.pos, got, c.out)
		}
	}
}

func TestClamp(t *testing.T) {
	for _, c := range []struct {
		x, lo, hi, out int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	} {
		if got := Clamp(c.x, c.lo, c.hi); got != c.out {
			t.Errorf("Clamp(%d, %d, %d) = %d, want: %d", c.x, c.lo, c.hi, got, c.out)
		}
	}
}

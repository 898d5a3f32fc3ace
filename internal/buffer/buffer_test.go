package buffer

import (
	"testing"
)

func TestTap(t *testing.T) {
	r := NewRing(8, 8)
	for i := 1; i <= 20; i++ {
		r.Write(float32(i))
		// after writing i, the sample written d writes ago is i-d+1.
		for d := 1; d <= min(i, r.Len()); d++ {
			if got, want := r.Tap(d), float32(i-d+1); got != want {
				t.Fatalf("after %d writes, Tap(%d) = %v, want: %v", i, d, got, want)
			}
		}
	}
	if got, want := r.Oldest(), r.Tap(r.Len()); got != want {
		t.Errorf("Oldest() = %v, Tap(Len) = %v, want them equal", got, want)
	}
}

func TestTapClamps(t *testing.T) {
	r := NewRing(4, 4)
	for i := 1; i <= 4; i++ {
		r.Write(float32(i))
	}
	for _, c := range []struct {
		d   int
		out float32
	}{
		{-3, 4},
		{0, 4},
		{1, 4},
		{4, 1},
		{100, 1},
	} {
		if got := r.Tap(c.d); got != c.out {
			t.Errorf("Tap(%d) = %v, want: %v", c.d, got, c.out)
		}
	}
}

func TestTapFrac(t *testing.T) {
	r := NewRing(16, 16)
	for i := 0; i < 16; i++ {
		r.Write(float32(i))
	}
	// 15 was written 1 ago, 14 was written 2 ago.
	if got, want := r.TapFrac(1.5), float32(14.5); got != want {
		t.Errorf("TapFrac(1.5) = %v, want: %v", got, want)
	}
	if got, want := r.TapFrac(3), r.Tap(3); got != want {
		t.Errorf("TapFrac(3) = %v, want Tap(3) = %v", got, want)
	}
}

func TestResize(t *testing.T) {
	r := NewRing(10, 100)
	for i := 0; i < 25; i++ {
		r.Write(1)
	}
	r.Resize(50)
	if r.Len() != 50 || r.Cap() != 100 {
		t.Fatalf("Resize(50) gave Len %d Cap %d, want 50 and 100", r.Len(), r.Cap())
	}
	var sum float32
	for d := 1; d <= r.Len(); d++ {
		sum += r.Tap(d)
	}
	if sum != 10 {
		t.Errorf("sum of contents after growing = %v, want the 10 old samples", sum)
	}

	allocs := testing.AllocsPerRun(100, func() {
		r.Resize(20)
		r.Resize(90)
	})
	if allocs != 0 {
		t.Errorf("resizing within capacity allocated %v times", allocs)
	}

	r.Resize(200)
	if r.Len() != 200 {
		t.Errorf("Resize(200) gave Len %d", r.Len())
	}
}

func TestReset(t *testing.T) {
	r := NewRing(4, 4)
	r.Write(1)
	r.Write(2)
	r.Reset()
	for d := 1; d <= r.Len(); d++ {
		if got := r.Tap(d); got != 0 {
			t.Errorf("after Reset, Tap(%d) = %v, want: 0", d, got)
		}
	}
}

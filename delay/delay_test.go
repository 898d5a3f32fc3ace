package delay

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
)

func TestLineImpulse(t *testing.T) {
	// 10 samples at 1kHz.
	l := NewLine(10*time.Millisecond, 0.5, 1000)
	if l.Len() != 10 {
		t.Fatalf("Len() = %d, want: 10", l.Len())
	}
	var got []float32
	for i := 0; i < 35; i++ {
		var x float32
		if i == 0 {
			x = 1
		}
		if y := l.Process(x); y != 0 {
			got = append(got, float32(i), y)
		}
	}
	want := []float32{10, 1, 20, 0.5, 30, 0.25}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("echoes as (index, value) pairs (-want +got):\n%s", diff)
	}
}

func TestLineMix(t *testing.T) {
	l := NewLine(time.Millisecond, 0, 1000)
	l.SetMix(0)
	if got := l.Process(0.5); got != 0.5 {
		t.Errorf("dry Process(0.5) = %v, want: 0.5", got)
	}
	l.SetMix(0.5)
	if got := l.Process(0); got != 0.25 {
		t.Errorf("half wet Process(0) = %v, want: 0.25", got)
	}
}

func TestLineFeedbackBounded(t *testing.T) {
	l := NewLine(5*time.Millisecond, 10, 1000)
	l.Process(1)
	var peak float32
	for i := 0; i < 10000; i++ {
		peak = max(peak, math32.Abs(l.Process(0)))
	}
	if peak > 1 {
		t.Errorf("feedback of 10 grew an impulse to %v", peak)
	}
	if last := math32.Abs(l.Process(0)); last > 1e-3 {
		t.Errorf("echoes still at %v after 10000 samples", last)
	}
}

func TestLineResize(t *testing.T) {
	l := NewLine(100*time.Millisecond, 0, 1000)
	l.Resize(3)
	l.Process(1)
	for i := 1; i < 3; i++ {
		if y := l.Process(0); y != 0 {
			t.Errorf("sample %d = %v, want silence", i, y)
		}
	}
	if y := l.Process(0); y != 1 {
		t.Errorf("sample 3 = %v, want the impulse back", y)
	}
}

func TestChorusDelayRange(t *testing.T) {
	const sr = 48000
	c := NewChorus(2, 10*time.Millisecond, 3*time.Millisecond, 1, sr)
	lo, hi := float32(ChorusSize), float32(0)
	for i := 0; i < sr; i++ {
		d := c.Delay()
		lo, hi = min(lo, d), max(hi, d)
		c.Process(0)
	}
	if lo < 0.007*sr-1 || hi > 0.013*sr+1 {
		t.Errorf("delay swept over [%v, %v] samples, want within [%v, %v]", lo, hi, 0.007*sr, 0.013*sr)
	}
	if hi-lo < 0.005*sr {
		t.Errorf("delay only swept over [%v, %v]", lo, hi)
	}
}

func TestChorusDelayClamped(t *testing.T) {
	c := NewChorus(1, time.Second, time.Second, 1, 44100)
	for i := 0; i < 44100; i++ {
		if d := c.Delay(); d < 1 || d > ChorusSize-1 {
			t.Fatalf("sample %d: delay %v outside the buffer", i, d)
		}
		c.Process(1)
	}
}

func TestChorusDry(t *testing.T) {
	c := NewChorus(1, 5*time.Millisecond, time.Millisecond, 0, 44100)
	for i := 0; i < 100; i++ {
		x := float32(i)
		if got := c.Process(x); got != x {
			t.Fatalf("dry chorus Process(%v) = %v", x, got)
		}
	}
}

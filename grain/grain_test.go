package grain

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pfcm/cymaglyph"
)

const sr = 44100

func TestTriggerFillsPool(t *testing.T) {
	p := NewPool(Hann, cymaglyph.NewNoise(), sr)
	for i := 0; i < PoolSize; i++ {
		if !p.Trigger() {
			t.Fatalf("Trigger() %d failed with %d active", i, p.Active())
		}
	}
	if p.Active() != PoolSize {
		t.Fatalf("Active() = %d, want: %d", p.Active(), PoolSize)
	}
	for i := 0; i < PoolSize; i++ {
		g := p.Grain(i)
		for _, c := range []struct {
			name      string
			v, lo, hi float32
		}{
			{"position", g.Position, MinPosition, MaxPosition},
			{"duration", g.Duration, MinDuration, MaxDuration},
			{"pitch", g.Pitch, MinPitch, MaxPitch},
			{"amplitude", g.Amplitude, MinAmplitude, MaxAmplitude},
			{"pan", g.Pan, -1, 1},
		} {
			if c.v < c.lo || c.v > c.hi {
				t.Errorf("grain %d %s = %v, want in [%v, %v]", i, c.name, c.v, c.lo, c.hi)
			}
		}
	}
}

func TestFullPoolDrops(t *testing.T) {
	p := NewPool(Gaussian, cymaglyph.NewNoise(), sr)
	for p.Trigger() {
	}
	for i := 0; i < 100; i++ {
		p.Next()
	}
	before := make([]Grain, PoolSize)
	for i := range before {
		before[i] = p.Grain(i)
	}
	if allocs := testing.AllocsPerRun(100, func() {
		if p.Trigger() {
			t.Errorf("Trigger() succeeded on a full pool")
		}
	}); allocs != 0 {
		t.Errorf("Trigger() on a full pool allocated %v times", allocs)
	}
	for i := range before {
		if diff := cmp.Diff(before[i], p.Grain(i), cmpopts.IgnoreUnexported(Grain{})); diff != "" {
			t.Errorf("grain %d changed by a dropped trigger (-before +after):\n%s", i, diff)
		}
	}
}

func TestGrainsFinish(t *testing.T) {
	p := NewPool(Hann, cymaglyph.NewNoise(), sr)
	p.Trigger()
	n := 0
	for p.Active() > 0 {
		y := p.Next()
		if math32.Abs(y) > MaxAmplitude {
			t.Fatalf("sample %d = %v, louder than one grain can be", n, y)
		}
		n++
		if n > int(MaxDuration*sr)+100 {
			t.Fatalf("grain still active after %d samples", n)
		}
	}
	if shortest := int(MinDuration * sr); n < shortest-100 {
		t.Errorf("grain lasted %d samples, want at least %d", n, shortest)
	}
}

func TestNextBounded(t *testing.T) {
	p := NewPool(Hann, cymaglyph.NewNoise(), sr)
	p.SetRate(100)
	for i := 0; i < sr; i++ {
		if i%100 == 0 {
			p.Trigger()
		}
		l, r := p.NextStereo()
		for _, y := range []float32{l, r} {
			if math32.IsNaN(y) || math32.Abs(y) > PoolSize*MaxAmplitude {
				t.Fatalf("sample %d = %v", i, y)
			}
		}
	}
}

func TestWindows(t *testing.T) {
	ws := windows()
	for _, w := range []Window{Hann, Gaussian} {
		tab := ws[w]
		if len(tab) != windowSize {
			t.Fatalf("%v window has %d points", w, len(tab))
		}
		if mid := tab[windowSize/2]; mid < 0.99 {
			t.Errorf("%v window peaks at %v, want about 1", w, mid)
		}
		if tab[0] > 0.01 {
			t.Errorf("%v window starts at %v, want about 0", w, tab[0])
		}
	}
}

func TestReset(t *testing.T) {
	p := NewPool(Hann, cymaglyph.NewNoise(), sr)
	p.Trigger()
	p.Trigger()
	p.Reset()
	if p.Active() != 0 {
		t.Errorf("Active() = %d after Reset", p.Active())
	}
	if y := p.Next(); y != 0 {
		t.Errorf("Next() = %v after Reset", y)
	}
}

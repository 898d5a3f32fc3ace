package filter

import (
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pfcm/cymaglyph"
)

const sr = 44100

// gain drives p with a sine at freq Hz for a second and returns the ratio of
// output to input RMS in dB, ignoring the first half while it settles.
func gain(p cymaglyph.Processor, freq float32) float32 {
	var in, out float32
	for i := 0; i < sr; i++ {
		x := math32.Sin(2 * math32.Pi * freq * float32(i) / sr)
		y := p.Process(x)
		if i >= sr/2 {
			in += x * x
			out += y * y
		}
	}
	return 10 * math32.Log10(out/in)
}

func TestSVFStability(t *testing.T) {
	fcs := []float32{20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 15000, 20000, Nyquist * sr, sr}
	for _, fc := range fcs {
		for _, q := range []float32{0.5, 0.707, 1, 2, 5, 10, 20} {
			for _, r := range []Response{Lowpass, Bandpass, Highpass, Notch} {
				s := NewSVF(r, fc, q, sr)
				peak := float32(0)
				for i := 0; i < 10000; i++ {
					var x float32
					if i == 0 {
						x = 1
					}
					y := s.Process(x)
					if math32.IsNaN(y) || math32.Abs(y) > 10 {
						t.Fatalf("%v at %vHz, Q %v: sample %d = %v", r, fc, q, i, y)
					}
					peak = max(peak, math32.Abs(y))
				}
				if peak == 0 {
					t.Errorf("%v at %vHz, Q %v: silent impulse response", r, fc, q)
				}
			}
		}
	}
}

func TestSVFResponse(t *testing.T) {
	for _, c := range []struct {
		r          Response
		fc, freq   float32
		minG, maxG float32 // dB
	}{
		{Lowpass, 1000, 100, -1, 1},
		{Lowpass, 1000, 10000, -200, -12},
		{Highpass, 1000, 10000, -1.5, 1},
		{Highpass, 1000, 100, -200, -12},
		{Bandpass, 1000, 1000, -4, -2}, // peak gain is Q
	} {
		name := fmt.Sprintf("%v %vHz at %vHz", c.r, c.fc, c.freq)
		t.Run(name, func(t *testing.T) {
			g := gain(NewSVF(c.r, c.fc, 0.707, sr), c.freq)
			if g < c.minG || g > c.maxG {
				t.Errorf("gain = %.2fdB, want between %v and %v", g, c.minG, c.maxG)
			}
		})
	}
}

func TestSVFReset(t *testing.T) {
	s := NewSVF(Lowpass, 500, 4, sr)
	run := func() []float32 {
		out := make([]float32, 100)
		for i := range out {
			out[i] = s.Process(float32(i%7) - 3)
		}
		return out
	}
	first := run()
	s.Reset()
	if diff := cmp.Diff(first, run()); diff != "" {
		t.Errorf("output after Reset differs (-first +second):\n%s", diff)
	}
}

func TestLadderDC(t *testing.T) {
	l := NewLadder(1000, 0, sr)
	var y float32
	for i := 0; i < 10000; i++ {
		y = l.Process(0.5)
	}
	if want := math32.Tanh(0.5); !cmp.Equal(y, want, cmpopts.EquateApprox(0, 1e-3)) {
		t.Errorf("settled DC output = %v, want: %v", y, want)
	}
}

func TestLadderRolloff(t *testing.T) {
	if g := gain(NewLadder(200, 0, sr), 5000); g > -40 {
		t.Errorf("ladder at 200Hz passes 5kHz at %.2fdB, want under -40dB", g)
	}
	if g := gain(NewLadder(5000, 0, sr), 100); g < -3 {
		t.Errorf("ladder at 5kHz passes 100Hz at %.2fdB, want over -3dB", g)
	}
}

func TestLadderBounded(t *testing.T) {
	for _, fc := range []float32{10, 100, 1000, 10000, sr} {
		for _, fb := range []float32{0, 1, 2, 3.9, 4, 100} {
			l := NewLadder(fc, fb, sr)
			n := cymaglyph.NewNoise()
			for i := 0; i < 10000; i++ {
				y := l.Process(n.Next() * 4)
				if math32.IsNaN(y) || math32.Abs(y) > 16 {
					t.Fatalf("ladder %vHz feedback %v: sample %d = %v", fc, fb, i, y)
				}
			}
		}
	}
}

func TestLadderDeterministic(t *testing.T) {
	a, b := NewLadder(800, 3.5, sr), NewLadder(800, 3.5, sr)
	for i := 0; i < 1000; i++ {
		x := math32.Sin(float32(i) * 0.05)
		if ya, yb := a.Process(x), b.Process(x); ya != yb {
			t.Fatalf("sample %d: %v != %v", i, ya, yb)
		}
	}
}

func TestAllpassMagnitude(t *testing.T) {
	for _, fc := range []float32{100, 1000, 8000} {
		a := AllpassCoefficient(fc, sr)
		ap := &Allpass{}
		g := gain(allpassAt{ap, a}, 1000)
		if math32.Abs(g) > 0.1 {
			t.Errorf("allpass at %vHz changes a 1kHz sine by %.3fdB", fc, g)
		}
	}
}

type allpassAt struct {
	ap *Allpass
	a  float32
}

func (p allpassAt) Process(x float32) float32 { return p.ap.Process(x, p.a) }
func (p allpassAt) Reset()                    { p.ap.Reset() }

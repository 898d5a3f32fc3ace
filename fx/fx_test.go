package fx

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const sr = 44100

func TestBitCrusherQuantises(t *testing.T) {
	b := NewBitCrusher(2, 1) // levels at multiples of 0.5
	for _, c := range []struct {
		in, want float32
	}{
		{0, 0},
		{0.2, 0},
		{0.3, 0.5},
		{-0.3, -0.5},
		{0.9, 1},
	} {
		if got := b.Process(c.in); got != c.want {
			t.Errorf("Process(%v) = %v, want: %v", c.in, got, c.want)
		}
	}
}

func TestBitCrusherHolds(t *testing.T) {
	b := NewBitCrusher(24, 3)
	var got []float32
	for _, x := range []float32{0.25, 0.5, 0.75, 0.125, 0.375, 0.625, 1} {
		got = append(got, b.Process(x))
	}
	want := []float32{0.25, 0.25, 0.25, 0.125, 0.125, 0.125, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("held samples (-want +got):\n%s", diff)
	}
}

func TestPhaserBounded(t *testing.T) {
	p := NewPhaser(8, 0.5, 200, 4000, sr)
	p.SetFeedback(0.7)
	var phase float32
	for i := 0; i < sr; i++ {
		y := p.Process(math32.Sin(2 * math32.Pi * phase))
		phase += 440.0 / sr
		if math32.IsNaN(y) || math32.Abs(y) > 1.7*4 {
			t.Fatalf("sample %d = %v", i, y)
		}
	}
}

func TestPhaserDryAtZeroFeedback(t *testing.T) {
	p := NewPhaser(4, 1, 300, 3000, sr)
	p.SetFeedback(0)
	for _, x := range []float32{1, -0.5, 0.25} {
		if got := p.Process(x); got != x {
			t.Errorf("Process(%v) = %v with no feedback", x, got)
		}
	}
}

func TestDimensionMono(t *testing.T) {
	d := NewDimension(1, 0.5, 0, sr)
	for i := 0; i < 2000; i++ {
		x := math32.Sin(float32(i) * 0.1)
		if l, r := d.Process(x); l != x || r != x {
			t.Fatalf("zero width Process(%v) = %v, %v", x, l, r)
		}
	}
}

func TestDimensionTaps(t *testing.T) {
	// At 1kHz the taps are 10 and 20 samples.
	d := NewDimension(1, 0, 1, 1000)
	var ls, rs []float32
	for i := 0; i < 30; i++ {
		var x float32
		if i == 0 {
			x = 1
		}
		l, r := d.Process(x)
		ls, rs = append(ls, l), append(rs, r)
	}
	want := func(at ...int) []float32 {
		w := make([]float32, 30)
		w[0] = 0.5
		for _, i := range at {
			w[i] = 0.5
		}
		return w
	}
	opt := cmpopts.EquateApprox(0, 1e-6)
	if diff := cmp.Diff(want(10), ls, opt); diff != "" {
		t.Errorf("left (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want(20), rs, opt); diff != "" {
		t.Errorf("right (-want +got):\n%s", diff)
	}
}

func TestDimensionTick(t *testing.T) {
	d := NewDimension(1, 0.3, 1, sr)
	in := [][]float32{make([]float32, 1024)}
	for i := range in[0] {
		in[0][i] = math32.Sin(float32(i) * 0.05)
	}
	out := [][]float32{make([]float32, 1024), make([]float32, 1024)}
	d.Tick(in, out)
	if cmp.Equal(out[0], out[1]) {
		t.Errorf("full width left and right are identical")
	}
}

func TestWarp(t *testing.T) {
	if got := (Warp{}).Ratio(5, 0.3); got != 5 {
		t.Errorf("zero warp Ratio(5, 0.3) = %v, want: 5", got)
	}
	w := Warp{Amount: 1}
	if a, b := math32.Abs(w.Ratio(2, 1)-2), math32.Abs(w.Ratio(20, 1)-20); a >= b {
		t.Errorf("harmonic 2 moved by %v, harmonic 20 by %v, want higher partials to move more", a, b)
	}
}

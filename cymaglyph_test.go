package cymaglyph

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSoftClip(t *testing.T) {
	for _, c := range []struct {
		in float32
	}{
		{0}, {0.3}, {-0.69}, {0.7}, {0.71}, {1}, {-1.5}, {5}, {-5}, {1e6},
	} {
		got := SoftClip(c.in)
		if math32.Abs(got) > 1 {
			t.Errorf("SoftClip(%v) = %v, want magnitude <= 1", c.in, got)
		}
		if c.in != 0 && math32.Signbit(got) != math32.Signbit(c.in) {
			t.Errorf("SoftClip(%v) = %v, want the same sign", c.in, got)
		}
		if math32.Abs(c.in) <= clipKnee && got != c.in {
			t.Errorf("SoftClip(%v) = %v, want it untouched", c.in, got)
		}
	}
}

func TestSoftClipMonotonic(t *testing.T) {
	prev := SoftClip(-10)
	for x := float32(-10); x < 10; x += 0.001 {
		y := SoftClip(x)
		if y < prev {
			t.Fatalf("SoftClip(%v) = %v, less than the previous %v", x, y, prev)
		}
		prev = y
	}
}

func TestFlush(t *testing.T) {
	for _, c := range []struct {
		in, out float32
	}{
		{1, 1},
		{-0.25, -0.25},
		{1e-20, 0},
		{math32.NaN(), 0},
		{math32.Inf(1), 0},
		{math32.Inf(-1), 0},
	} {
		if got := Flush(c.in); got != c.out {
			t.Errorf("Flush(%v) = %v, want: %v", c.in, got, c.out)
		}
	}
}

func TestNoise(t *testing.T) {
	a, b := NewNoise(), NewNoise()
	first := make([]float32, 1000)
	for i := range first {
		first[i] = a.Next()
		if first[i] < -1 || first[i] >= 1 {
			t.Fatalf("sample %d = %v, out of range", i, first[i])
		}
		if got := b.Next(); got != first[i] {
			t.Fatalf("sample %d differs between generators: %v vs %v", i, got, first[i])
		}
	}
	a.Reset()
	again := make([]float32, len(first))
	for i := range again {
		again[i] = a.Next()
	}
	if diff := cmp.Diff(first, again); diff != "" {
		t.Errorf("after Reset (-before +after):\n%s", diff)
	}

	var mean float32
	for _, x := range first {
		mean += x
	}
	if mean /= float32(len(first)); math32.Abs(mean) > 0.1 {
		t.Errorf("mean = %v, want roughly zero", mean)
	}
}

func TestMetro(t *testing.T) {
	m := &Metro{}
	m.SetPeriod(4)
	var fired []int
	for i := 0; i < 20; i++ {
		if m.Next() {
			fired = append(fired, i)
		}
	}
	if diff := cmp.Diff([]int{4, 9, 14, 19}, fired); diff != "" {
		t.Errorf("firings (-want +got):\n%s", diff)
	}
}

func TestEvery(t *testing.T) {
	// At 1kHz a millisecond is a sample.
	e := Every(0.5, 4*time.Millisecond, 1000)
	out := [][]float32{make([]float32, 6)}
	var got []float32
	for _i := 0; _i < 2; _i++ {
		e.Tick(nil, out)
		got = append(got, out[0]...)
	}
	want := []float32{0.5, 0, 0, 0, 0.5, 0, 0, 0, 0.5, 0, 0, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Every (-want +got):\n%s", diff)
	}
}

func TestChain(t *testing.T) {
	ch := Serially(
		Concurrently(Const{1}, Const{0.5}),
		Sum(2),
		Scale{Mul: 2, Shift: -1},
	)
	if ch.Inputs() != 0 || ch.Outputs() != 1 {
		t.Fatalf("%v has %d inputs and %d outputs, want 0 and 1", ch, ch.Inputs(), ch.Outputs())
	}
	out := [][]float32{make([]float32, 8)}
	ch.Tick(nil, out)

	want := 2*(1.5/math32.Sqrt(2)) - 1
	for i, got := range out[0] {
		if !cmp.Equal(got, want, cmpopts.EquateApprox(0, 1e-6)) {
			t.Errorf("out[%d] = %v, want: %v", i, got, want)
		}
	}
}

func TestSeriallyMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Serially(Const, Sum(2)) did not panic")
		}
	}()
	Serially(Const{1}, Sum(2))
}

type halver struct{ n int }

func (h *halver) Process(x float32) float32 { h.n++; return x / 2 }
func (h *halver) Reset()                    { h.n = 0 }

func TestProcess(t *testing.T) {
	h := &halver{}
	p := Process(h)
	in := [][]float32{{1, 2, 3}}
	out := [][]float32{make([]float32, 3)}
	p.Tick(in, out)
	if diff := cmp.Diff([]float32{0.5, 1, 1.5}, out[0]); diff != "" {
		t.Errorf("Process(halver) (-want +got):\n%s", diff)
	}
	if h.n != 3 {
		t.Errorf("halver called %d times, want: 3", h.n)
	}
}

package cymaglyph

import (
	"fmt"
	"time"
)

// Metro counts samples and fires once every period. It is the clock behind
// anything that needs to happen at a rate rather than every sample.
type Metro struct {
	period int
	count  int
}

// Every creates a Ticker that outputs val on its first sample and then once
// every dur, and zero in between.
func Every(val float32, dur time.Duration, samplerate float32) Ticker {
	t := &every{val: val}
	t.m.SetPeriod(int(float64(samplerate)*dur.Seconds()) - 1)
	t.m.count = t.m.period
	return t
}

type every struct {
	m   Metro
	val float32
}

func (*every) Inputs() int      { return 0 }
func (*every) Outputs() int     { return 1 }
func (t *every) String() string { return fmt.Sprintf("Every(%v,%d)", t.val, t.m.period+1) }

func (t *every) Tick(_, out [][]float32) {
	for i := range out[0] {
		out[0][i] = 0
		if t.m.Next() {
			out[0][i] = t.val
		}
	}
}

// SetPeriod changes the number of samples between firings. The count so far
// is kept, so a shorter period may fire on the next sample.
func (m *Metro) SetPeriod(n int) {
	m.period = max(n, 1)
}

// SetRate sets the period from a rate in Hz.
func (m *Metro) SetRate(hz, samplerate float32) {
	if hz <= 0 {
		m.SetPeriod(1 << 30)
		return
	}
	m.SetPeriod(int(samplerate / hz))
}

// Next advances by a sample and reports whether the Metro fired.
func (m *Metro) Next() bool {
	m.count++
	if m.count > m.period {
		m.count = 0
		return true
	}
	return false
}

func (m *Metro) Reset() { m.count = 0 }

package osc

import "github.com/chewxy/math32"

// Operator is a sine oscillator for FM graphs. It runs at Ratio times the
// carrier frequency and feeds a proportion of its own last output back into
// its phase.
type Operator struct {
	Ratio     float32
	Amplitude float32
	Feedback  float32

	phase float32
	last  float32
}

// Advance moves the operator on by one sample of the carrier frequency.
func (o *Operator) Advance(freq, samplerate float32) {
	o.phase = Wrap(o.phase + o.Ratio*freq/samplerate)
}

// Generate returns the operator's output with its phase offset by mod cycles.
func (o *Operator) Generate(mod float32) float32 {
	out := math32.Sin(2 * math32.Pi * (o.phase + mod + o.last*o.Feedback))
	o.last = out
	return out * o.Amplitude
}

func (o *Operator) Reset() { o.phase, o.last = 0, 0 }

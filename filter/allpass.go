package filter

import (
	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
)

// Allpass is a first order allpass filter. It leaves the magnitude alone and
// shifts the phase by 90 degrees at the break frequency.
type Allpass struct {
	x1, y1 float32
}

// AllpassCoefficient returns the coefficient that puts the break frequency of
// an Allpass at fc Hz.
func AllpassCoefficient(fc, samplerate float32) float32 {
	fc = min(max(fc, 1), Nyquist*samplerate)
	t := math32.Tan(math32.Pi * fc / samplerate)
	return (1 - t) / (1 + t)
}

// Process filters one sample with coefficient a.
func (ap *Allpass) Process(in, a float32) float32 {
	y := a*in + ap.x1 - a*ap.y1
	ap.x1 = in
	ap.y1 = cymaglyph.Flush(y)
	return ap.y1
}

func (ap *Allpass) Reset() { ap.x1, ap.y1 = 0, 0 }

// package filter provides filters.
package filter

import (
	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
)

// Nyquist is the fraction of the sample rate that cutoffs are clamped to.
const Nyquist = 0.49

// oversample is how many times the SVF runs its integrators per sample. Run
// once per sample with f = 2sin(πfc/sr), the loop blows up at Q 0.5 with the
// cutoff near 0.49 of the sample rate.
const oversample = 4

// Response selects which output of an SVF Process returns.
type Response byte

const (
	Lowpass Response = iota
	Bandpass
	Highpass
	Notch
)

func (r Response) String() string {
	return []string{
		Lowpass:  "lowpass",
		Bandpass: "bandpass",
		Highpass: "highpass",
		Notch:    "notch",
	}[r]
}

// SVF is a Chamberlin state-variable filter. It produces all of its responses
// at once; Step advances it and Low, Band, High and Notch read the results.
//
// The integrator pair runs several times per input sample, which keeps the
// structure stable for every cutoff up to the Nyquist clamp and every
// resonance from 0.5 up.
type SVF struct {
	Response Response

	low, band, high float32
	f, q            float32
}

var _ cymaglyph.Processor = &SVF{}

// NewSVF returns a filter with the given response, cutoff in Hz and resonance.
func NewSVF(r Response, cutoff, resonance, samplerate float32) *SVF {
	s := &SVF{Response: r}
	s.SetParams(cutoff, resonance, samplerate)
	return s
}

// SetParams sets the cutoff in Hz and the resonance Q. The cutoff is clamped to
// below Nyquist and Q to at least 0.5.
func (s *SVF) SetParams(cutoff, resonance, samplerate float32) {
	fc := min(max(cutoff, 0), Nyquist*samplerate)
	s.f = 2 * math32.Sin(math32.Pi*fc/(oversample*samplerate))
	s.q = 1 / max(resonance, 0.5)
}

// Step runs the filter for one input sample.
func (s *SVF) Step(in float32) {
	low, band, high := s.low, s.band, s.high
	for _i := 0; _i < oversample; _i++ {
		low += s.f * band
		high = in - low - s.q*band
		band += s.f * high
	}
	s.low = cymaglyph.Flush(low)
	s.band = cymaglyph.Flush(band)
	s.high = high
}

func (s *SVF) Low() float32   { return s.low }
func (s *SVF) Band() float32  { return s.band }
func (s *SVF) High() float32  { return s.high }
func (s *SVF) Notch() float32 { return s.low + s.high }

// Process steps the filter and returns the output selected by Response.
func (s *SVF) Process(in float32) float32 {
	s.Step(in)
	switch s.Response {
	case Bandpass:
		return s.band
	case Highpass:
		return s.high
	case Notch:
		return s.Notch()
	default:
		return s.low
	}
}

func (s *SVF) Reset() {
	s.low, s.band, s.high = 0, 0, 0
}

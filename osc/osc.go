// package osc provides oscillators.
package osc

import (
	"github.com/chewxy/math32"
)

// Phase is a phase accumulator, a position in [0, 1) through a cycle.
type Phase float32

// Next advances the phase by freq/samplerate, wraps it and returns the new
// position.
func (p *Phase) Next(freq, samplerate float32) float32 {
	*p = Phase(Wrap(float32(*p) + freq/samplerate))
	return float32(*p)
}

func (p *Phase) Reset() { *p = 0 }

// Wrap returns the fractional part of x, in [0, 1) even for negative x.
func Wrap(x float32) float32 {
	x -= math32.Floor(x)
	if x >= 1 {
		// -tiny - Floor(-tiny) rounds up to exactly 1.
		return 0
	}
	return x
}

// The naive shapes below take a phase in cycles. They alias, so they are for
// modulation and for blending in small amounts.

func Sine(p float32) float32 { return math32.Sin(2 * math32.Pi * p) }

func Saw(p float32) float32 { return 2*Wrap(p) - 1 }

func Square(p float32) float32 {
	if Wrap(p) < 0.5 {
		return 1
	}
	return -1
}

func Triangle(p float32) float32 {
	p = Wrap(p)
	if p < 0.5 {
		return 4*p - 1
	}
	return 3 - 4*p
}

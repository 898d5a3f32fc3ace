// package reverb is a Schroeder style reverb: a bank of damped feedback combs
// in parallel, followed by a chain of allpass diffusers.
package reverb

import (
	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/internal/buffer"
	"github.com/pfcm/cymaglyph/interp"
)

// Buffer lengths in samples at 44.1kHz.
var (
	combTuning    = [...]int{1117, 1187, 1277, 1361, 1423, 1493, 1559, 1613}
	allpassTuning = [...]int{557, 439, 337, 227}
)

const (
	tuningRate = 44100
	combScale  = 0.84
	diffusion  = 0.5
)

type comb struct {
	rb   buffer.Ring
	last float32
}

func (c *comb) process(in, feedback, damp float32) float32 {
	y := c.rb.Oldest()
	c.last = cymaglyph.Flush(y*(1-damp) + c.last*damp)
	c.rb.Write(in + c.last*feedback)
	return y
}

type allpass struct {
	rb buffer.Ring
}

func (a *allpass) process(in float32) float32 {
	b := a.rb.Oldest()
	s := in + b*diffusion
	a.rb.Write(cymaglyph.Flush(s))
	return b - s*diffusion
}

// Reverb is a fixed-size reverb. Its output is entirely wet.
type Reverb struct {
	combs     [len(combTuning)]comb
	allpasses [len(allpassTuning)]allpass

	roomSize, damping, wet float32
}

var _ cymaglyph.Processor = &Reverb{}

// New makes a Reverb for the given sample rate with a medium room.
func New(samplerate float32) *Reverb {
	r := &Reverb{roomSize: 0.5, damping: 0.5, wet: 1}
	r.Prepare(samplerate)
	return r
}

// Prepare reallocates every buffer for a new sample rate. Lengths are scaled
// from their 44.1kHz tunings and nudged up to the next prime so the echoes of
// different combs rarely line up.
func (r *Reverb) Prepare(samplerate float32) {
	for i := range r.combs {
		r.combs[i].rb.Init(Length(combTuning[i], samplerate), 0)
		r.combs[i].last = 0
	}
	for i := range r.allpasses {
		r.allpasses[i].rb.Init(Length(allpassTuning[i], samplerate), 0)
	}
}

// Length scales a buffer length tuned at 44.1kHz to samplerate, rounding up
// to a prime.
func Length(tuned int, samplerate float32) int {
	n := int(float32(tuned)*samplerate/tuningRate + 0.5)
	return nextPrime(max(n, 2))
}

// Lengths returns the current comb lengths.
func (r *Reverb) Lengths() []int {
	ls := make([]int, len(r.combs))
	for i := range r.combs {
		ls[i] = r.combs[i].rb.Len()
	}
	return ls
}

// SetParams sets the room size and damping, each in [0, 1], and the output
// level.
func (r *Reverb) SetParams(roomSize, damping, wet float32) {
	r.roomSize = interp.Clamp(roomSize, 0, 1)
	r.damping = interp.Clamp(damping, 0, 1)
	r.wet = wet
}

func (r *Reverb) Process(in float32) float32 {
	fb := r.roomSize * combScale
	var sum float32
	for i := range r.combs {
		sum += r.combs[i].process(in, fb, r.damping)
	}
	out := sum / float32(len(r.combs))
	for i := range r.allpasses {
		out = r.allpasses[i].process(out)
	}
	return out * r.wet
}

func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].rb.Reset()
		r.combs[i].last = 0
	}
	for i := range r.allpasses {
		r.allpasses[i].rb.Reset()
	}
}

func nextPrime(n int) int {
	for !isPrime(n) {
		n++
	}
	return n
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for d := 2; d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

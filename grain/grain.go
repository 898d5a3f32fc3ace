// package grain is a granular voice pool: a fixed number of short, windowed
// readers over a shared source buffer, each started with random parameters.
package grain

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"
	"github.com/mjibson/go-dsp/window"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/interp"
	"github.com/pfcm/cymaglyph/osc"
)

const (
	// PoolSize is the number of grains that can play at once.
	PoolSize = 32
	// SourceSize is the length of the shared source buffer.
	SourceSize = 4096

	windowSize = 1024
)

// Ranges that a triggered grain's parameters are drawn from.
const (
	MinPosition, MaxPosition   = 0.5, 1
	MinDuration, MaxDuration   = 0.05, 0.3 // seconds
	MinPitch, MaxPitch         = 0.5, 2
	MinAmplitude, MaxAmplitude = 0.2, 0.5
)

// Window is the envelope applied over each grain's life.
type Window byte

const (
	Hann Window = iota
	Gaussian
)

func (w Window) String() string {
	switch w {
	case Hann:
		return "hann"
	case Gaussian:
		return "gaussian"
	}
	return fmt.Sprintf("Window(%d)", w)
}

var windows = sync.OnceValue(func() [2][]float32 {
	var ws [2][]float32
	for i, x := range window.Hann(windowSize) {
		ws[Hann] = append(ws[Hann], float32(x))
		e := float32(i) / (windowSize - 1)
		ws[Gaussian] = append(ws[Gaussian], math32.Exp(-0.5*sq((e-0.5)/0.15)))
	}
	return ws
})

func sq(x float32) float32 { return x * x }

// source is three decaying harmonics, 3, 7 and 11 cycles over the buffer.
var source = sync.OnceValue(func() []float32 {
	src := make([]float32, SourceSize)
	for i := range src {
		t := float32(i) / SourceSize
		s := osc.Sine(3*t)*0.3 + osc.Sine(7*t)*0.2 + osc.Sine(11*t)*0.1
		src[i] = s * math32.Exp(-2*t)
	}
	return src
})

// SourceCycles is how many cycles of its lowest harmonic the source buffer
// holds, for choosing a rate that plays it at a given pitch.
const SourceCycles = 3

// Grain is one voice in a Pool.
type Grain struct {
	Position  float32 // through the source, [0, 1)
	Duration  float32 // seconds
	Pitch     float32
	Amplitude float32
	Envelope  float32 // progress through the window, [0, 1)
	Pan       float32 // -1 is left
	Active    bool

	step float32 // envelope increment
}

// Pool is a fixed set of grains. Triggering when every grain is busy does
// nothing.
type Pool struct {
	grains [PoolSize]Grain
	win    []float32
	src    []float32

	samplerate float32
	rate       float32 // source buffers per second at pitch 1

	noise *cymaglyph.Noise
}

// NewPool returns an idle pool shaping grains with w. Random parameters are
// drawn from noise, which may be shared with other users.
func NewPool(w Window, noise *cymaglyph.Noise, samplerate float32) *Pool {
	if noise == nil {
		noise = cymaglyph.NewNoise()
	}
	p := &Pool{
		win:   windows()[w],
		src:   source(),
		rate:  1,
		noise: noise,
	}
	p.Prepare(samplerate)
	return p
}

func (p *Pool) Prepare(samplerate float32) {
	p.samplerate = samplerate
	for i := range p.grains {
		if g := &p.grains[i]; g.Active {
			g.step = 1 / (g.Duration * samplerate)
		}
	}
}

// SetRate sets how many times a second a grain at pitch 1 reads through the
// whole source.
func (p *Pool) SetRate(buffersPerSecond float32) { p.rate = buffersPerSecond }

// Trigger starts a grain in the first free slot, reporting false if there
// was none.
func (p *Pool) Trigger() bool {
	for i := range p.grains {
		g := &p.grains[i]
		if g.Active {
			continue
		}
		*g = Grain{
			Position:  p.noise.Uniform(MinPosition, MaxPosition),
			Duration:  p.noise.Uniform(MinDuration, MaxDuration),
			Pitch:     p.noise.Uniform(MinPitch, MaxPitch),
			Amplitude: p.noise.Uniform(MinAmplitude, MaxAmplitude),
			Pan:       p.noise.Uniform(-1, 1),
			Active:    true,
		}
		g.step = 1 / (g.Duration * p.samplerate)
		return true
	}
	return false
}

// Next mixes every active grain down to one sample and advances them.
func (p *Pool) Next() float32 {
	var out float32
	for i := range p.grains {
		if g := &p.grains[i]; g.Active {
			out += p.advance(g)
		}
	}
	return out
}

// NextStereo is Next with every grain panned with equal power.
func (p *Pool) NextStereo() (l, r float32) {
	for i := range p.grains {
		g := &p.grains[i]
		if !g.Active {
			continue
		}
		angle := (g.Pan + 1) * math32.Pi / 4
		s := p.advance(g)
		l += s * math32.Cos(angle)
		r += s * math32.Sin(angle)
	}
	return l, r
}

func (p *Pool) advance(g *Grain) float32 {
	env := interp.At(p.win, g.Envelope*(windowSize-1))
	s := interp.At(p.src, g.Position*SourceSize) * env * g.Amplitude
	g.Envelope += g.step
	g.Position = osc.Wrap(g.Position + g.Pitch*p.rate/p.samplerate)
	if g.Envelope >= 1 {
		g.Active = false
	}
	return s
}

// Active is the number of grains playing.
func (p *Pool) Active() int {
	n := 0
	for i := range p.grains {
		if p.grains[i].Active {
			n++
		}
	}
	return n
}

// Grain returns a copy of the i'th grain.
func (p *Pool) Grain(i int) Grain { return p.grains[i] }

// Reset silences every grain.
func (p *Pool) Reset() {
	for i := range p.grains {
		p.grains[i] = Grain{}
	}
}

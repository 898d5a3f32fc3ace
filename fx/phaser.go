package fx

import (
	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/filter"
	"github.com/pfcm/cymaglyph/interp"
	"github.com/pfcm/cymaglyph/osc"
)

// MaxStages is the most allpass stages a Phaser can have.
const MaxStages = 12

// Phaser sweeps a cascade of first order allpasses up and down and adds the
// result back onto the input, so the notches move with the sweep.
type Phaser struct {
	stages [MaxStages]filter.Allpass
	n      int

	lfo        osc.LFO
	lo, hi     float32 // Hz
	feedback   float32
	samplerate float32
}

var _ cymaglyph.Processor = &Phaser{}

// NewPhaser makes a Phaser with the given number of stages, sweeping
// between lo and hi Hz at rate Hz.
func NewPhaser(stages int, rate, lo, hi, samplerate float32) *Phaser {
	p := &Phaser{
		n:        interp.Clamp(stages, 1, MaxStages),
		lfo:      osc.LFO{Shape: osc.SineShape},
		feedback: 0.5,
	}
	p.lfo.SetRate(rate)
	p.SetRange(lo, hi)
	p.Prepare(samplerate)
	return p
}

func (p *Phaser) Prepare(samplerate float32) {
	p.samplerate = samplerate
	p.lfo.Prepare(samplerate)
}

// SetRange sets the frequencies the sweep moves between.
func (p *Phaser) SetRange(lo, hi float32) {
	p.lo, p.hi = max(lo, 1), max(hi, lo, 1)
}

// SetFeedback sets how much of the allpass output is added to the input, at
// most 1.
func (p *Phaser) SetFeedback(fb float32) { p.feedback = interp.Clamp(fb, -1, 1) }

func (p *Phaser) SetRate(hz float32) { p.lfo.SetRate(hz) }

func (p *Phaser) Process(in float32) float32 {
	sweep := (p.lfo.Next() + 1) / 2
	fc := p.lo * math32.Pow(p.hi/p.lo, sweep)
	a := filter.AllpassCoefficient(fc, p.samplerate)
	y := in
	for i := range p.stages[:p.n] {
		y = p.stages[i].Process(y, a)
	}
	return in + y*p.feedback
}

func (p *Phaser) Reset() {
	for i := range p.stages {
		p.stages[i].Reset()
	}
	p.lfo.Reset()
}

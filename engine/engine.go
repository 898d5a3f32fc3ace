// package engine is the synthesizer core: one instance of every building
// block, and the patches that wire them up into each mode.
//
// An Engine is not safe for concurrent use. It is meant to be driven from a
// single audio callback, one sample at a time, and never allocates once it
// has been prepared.
package engine

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/delay"
	"github.com/pfcm/cymaglyph/env"
	"github.com/pfcm/cymaglyph/filter"
	"github.com/pfcm/cymaglyph/fx"
	"github.com/pfcm/cymaglyph/grain"
	"github.com/pfcm/cymaglyph/interp"
	"github.com/pfcm/cymaglyph/osc"
	"github.com/pfcm/cymaglyph/reverb"
	"github.com/pfcm/cymaglyph/wg"
)

// lineLength is the length of the general purpose delay lines, 2048 samples
// at 44.1kHz.
const lineLength = 2048 * time.Second / 44100

// Engine generates samples for any Mode from a phase and a frequency.
type Engine struct {
	samplerate float32

	velocity  float32
	cutoff    float32 // Hz, scales the modes with a filter sweep
	resonance float32
	spread    float32

	noise     *cymaglyph.Noise
	wavetable *osc.Wavetable
	filters   [5]filter.SVF
	ladder    filter.Ladder
	lines     [4]*delay.Line
	chorus    [2]*delay.Chorus
	reverb    *reverb.Reverb
	ks        *wg.KS
	burst     *env.AD
	grains    *grain.Pool
	cloud     *grain.Pool
	ops       [6]osc.Operator
	phaser    *fx.Phaser
	crusher   *fx.BitCrusher
	dim       *fx.Dimension

	grainClock, cloudClock cymaglyph.Metro

	lfos [numLFOs]osc.LFO

	// Oscillators that do not run at a whole multiple of the caller's
	// phase keep their own.
	partials  [len(crystalPartials)]osc.Phase
	detune    [2]osc.Phase
	sub       osc.Phase
	harmonics [numHarmonics]osc.Phase
	shimmer   osc.Phase
	wobble    osc.Phase

	drift          float32
	chaos          [3]float32
	morphX, morphY float32
	lastFreq       float32
	side           float32 // stereo difference of the grain layer
	plucked        bool
}

// New returns an Engine prepared for the given sample rate. It panics if the
// sample rate is not positive.
func New(samplerate float32) *Engine {
	e := &Engine{
		velocity:  1,
		cutoff:    1000,
		resonance: 1,
		spread:    1,
		noise:     cymaglyph.NewNoise(),
	}
	e.wavetable = osc.NewWavetable(samplerate)
	for i := range e.lines {
		e.lines[i] = delay.NewLine(lineLength, 0.5, samplerate)
	}
	e.chorus[0] = delay.NewChorus(0.7, 12*time.Millisecond, 3*time.Millisecond, 0.3, samplerate)
	e.chorus[1] = delay.NewChorus(0.25, 20*time.Millisecond, 6*time.Millisecond, 0.4, samplerate)
	e.reverb = reverb.New(samplerate)
	e.reverb.SetParams(0.75, 0.4, 1)
	e.ks = wg.NewKS(samplerate)
	e.burst = env.AttackDecay(0, 0, samplerate)
	e.grains = grain.NewPool(grain.Hann, e.noise, samplerate)
	e.cloud = grain.NewPool(grain.Gaussian, e.noise, samplerate)
	for i, r := range fmRatios {
		e.ops[i] = osc.Operator{Ratio: r, Amplitude: 1 / float32(i+1)}
	}
	e.ops[5].Feedback = 0.1
	e.phaser = fx.NewPhaser(6, 0.3, 300, 3000, samplerate)
	e.crusher = fx.NewBitCrusher(8, 4)
	e.dim = fx.NewDimension(1, 0.4, 0.5, samplerate)
	e.lfos[nebulaSlow].Shape = osc.TriangleShape

	e.Prepare(samplerate)
	for i, r := range lfoRates {
		e.lfos[i].SetRate(r)
	}
	return e
}

// Prepare rederives everything that depends on the sample rate, reallocating
// buffers as necessary, then resets the engine. It must not be called from
// the audio thread.
func (e *Engine) Prepare(samplerate float32) {
	if samplerate <= 0 {
		panic(fmt.Errorf("engine: sample rate %v is not positive", samplerate))
	}
	e.samplerate = samplerate
	e.wavetable.Prepare(samplerate)
	for _, l := range e.lines {
		l.Prepare(samplerate)
	}
	for _, c := range e.chorus {
		c.Prepare(samplerate)
	}
	e.reverb.Prepare(samplerate)
	e.ks.Prepare(samplerate)
	e.grains.Prepare(samplerate)
	e.cloud.Prepare(samplerate)
	e.phaser.Prepare(samplerate)
	e.dim.Prepare(samplerate)
	for i := range e.lfos {
		e.lfos[i].Prepare(samplerate)
	}
	e.cloudClock.SetRate(8, samplerate)
	e.Reset()
}

const (
	morpheusLFO = iota
	vibrato
	shift
	breath
	nebulaFast
	nebulaSlow
	numLFOs
)

// lfoRates are in Hz.
var lfoRates = [numLFOs]float32{
	morpheusLFO: 0.1,
	vibrato:     5,
	shift:       0.3,
	breath:      0.2,
	nebulaFast:  0.37,
	nebulaSlow:  0.13,
}

// SampleRate returns the rate the engine was last prepared for.
func (e *Engine) SampleRate() float32 { return e.samplerate }

// SetVelocity sets how hard the note was played, in [0, 1]. Modes that read
// it get brighter or more excited as it rises.
func (e *Engine) SetVelocity(v float32) { e.velocity = interp.Clamp(v, 0, 1) }

// SetFilterCutoff moves the filter sweeps of the filtered modes. 1kHz is
// neutral.
func (e *Engine) SetFilterCutoff(hz float32) { e.cutoff = interp.Clamp(hz, 20, 20000) }

// SetResonance scales the resonance of the filtered modes. 1 is neutral.
func (e *Engine) SetResonance(r float32) { e.resonance = interp.Clamp(r, 0, 4) }

// SetHarmonicSpread scales how far the inharmonic and warped partials stray
// from the harmonic series. 1 is neutral and 0 makes them harmonic.
func (e *Engine) SetHarmonicSpread(s float32) { e.spread = interp.Clamp(s, 0, 4) }

// tone is the cutoff relative to neutral.
func (e *Engine) tone() float32 { return e.cutoff / 1000 }

// Reset clears all transient state, so that the next sample depends only on
// the arguments it is generated with. No buffers are reallocated and the
// parameters set through the setters are kept.
func (e *Engine) Reset() {
	e.noise.Reset()
	for i := range e.filters {
		e.filters[i].Reset()
	}
	e.ladder.Reset()
	for _, l := range e.lines {
		l.Reset()
	}
	for _, c := range e.chorus {
		c.Reset()
	}
	e.reverb.Reset()
	e.ks.Reset()
	e.burst.Reset()
	e.grains.Reset()
	e.cloud.Reset()
	e.grainClock.Reset()
	e.cloudClock.Reset()
	for i := range e.ops {
		e.ops[i].Reset()
	}
	e.phaser.Reset()
	e.crusher.Reset()
	e.dim.Reset()
	for i := range e.lfos {
		e.lfos[i].Reset()
	}
	for i := range e.partials {
		e.partials[i].Reset()
	}
	for i := range e.detune {
		e.detune[i].Reset()
	}
	e.sub.Reset()
	for i := range e.harmonics {
		e.harmonics[i].Reset()
	}
	e.shimmer.Reset()
	e.wobble.Reset()

	e.drift = 0
	e.chaos = [3]float32{0.1, 0, 0}
	e.lastFreq = 0
	e.morphX, e.morphY = 0, 0
	e.wavetable.Reset()
	e.wavetable.SetMorph(0)
	e.plucked = false
}

// Trigger marks a note onset. The modes that excite something once per note
// do so again at the start of the next cycle, without the rest of the state
// being cleared the way Reset clears it.
func (e *Engine) Trigger() {
	e.plucked = false
}

// Exciting reports whether the Resonator's string is still being excited.
func (e *Engine) Exciting() bool { return e.burst.Active() }

// Velocity returns the velocity last set.
func (e *Engine) Velocity() float32 { return e.velocity }

// GenerateSample returns the next sample of mode m at the given phase, in
// [0, 1), and frequency in Hz. Modes out of range play Crystalline. The
// result is always soft clipped into (-1, 1).
func (e *Engine) GenerateSample(phase, freq float32, m Mode) float32 {
	if !m.Valid() {
		m = Crystalline
	}
	if math32.Abs(freq-e.lastFreq) > 0.1 {
		e.lastFreq = freq
		e.updateMorph(freq)
	}
	e.side = 0
	return cymaglyph.SoftClip(cymaglyph.Flush(modes[m].generate(e, phase, freq)))
}

// GenerateStereo is GenerateSample spread into stereo by the mode's width.
// The grain layers of Texture and Nebula are also panned grain by grain.
func (e *Engine) GenerateStereo(phase, freq float32, m Mode) (l, r float32) {
	if !m.Valid() {
		m = Crystalline
	}
	e.dim.SetWidth(modes[m].Width)
	l, r = e.dim.Process(e.GenerateSample(phase, freq, m))
	side := cymaglyph.Flush(e.side)
	return cymaglyph.SoftClip(l - side), cymaglyph.SoftClip(r + side)
}

// Side returns the stereo difference the grain layer contributed to the last
// sample, zero for modes without one.
func (e *Engine) Side() float32 { return e.side }

// grainsStereo runs a grain pool panned and returns its mid, recording its
// side scaled by gain.
func (e *Engine) grainsStereo(p *grain.Pool, gain float32) float32 {
	l, r := p.NextStereo()
	e.side = (r - l) * math32.Sqrt2 / 2 * gain
	return (l + r) * math32.Sqrt2 / 2
}

// updateMorph moves the morphing modes to a position that depends on the
// note, so every note has a slightly different timbre.
func (e *Engine) updateMorph(freq float32) {
	e.morphX = math32.Sin(freq*0.01)*0.5 + 0.5
	e.morphY = math32.Cos(freq*0.007)*0.5 + 0.5
	e.wavetable.SetMorph(freq / 100)
}

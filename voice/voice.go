// package voice turns note and velocity signals into sound from an engine,
// handling the note lifecycle, tuning, pitch sweep and output gain.
package voice

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/engine"
	"github.com/pfcm/cymaglyph/env"
	"github.com/pfcm/cymaglyph/interp"
	"github.com/pfcm/cymaglyph/osc"
)

const (
	// MinA4 and MaxA4 bound the tuning reference.
	MinA4, MaxA4 = 415, 466
	// DefaultA4 is concert pitch.
	DefaultA4 = 440

	// MaxSweepCents is the widest sweep, two octaves either way.
	MaxSweepCents = 2400

	gainSmoothing = 10 * time.Millisecond
)

// NoteToFrequency returns the frequency in Hz of a MIDI note, which may be
// fractional, tuned so that note 69 is a4 Hz. a4 is clamped to [MinA4, MaxA4].
func NoteToFrequency(note, a4 float32) float32 {
	a4 = interp.Clamp(a4, MinA4, MaxA4)
	return a4 * math32.Exp2((note-69)/12)
}

// FrequencyToNote is the inverse of NoteToFrequency.
func FrequencyToNote(f, a4 float32) float32 {
	a4 = interp.Clamp(a4, MinA4, MaxA4)
	return 69 + 12*math32.Log2(f/a4)
}

// param is a float32 that one goroutine can set while the audio thread reads
// it.
type param struct{ bits atomic.Uint32 }

func (p *param) Load() float32   { return math.Float32frombits(p.bits.Load()) }
func (p *param) Store(x float32) { p.bits.Store(math.Float32bits(x)) }

// Voice is a Ticker with two inputs, a MIDI note number and a velocity in
// [0, 1], producing one output, or two if it was made with NewStereo.
//
// A velocity going from zero to non-zero starts a note, resetting the engine
// if the previous note had finished, and going back to zero releases it.
// The mode, tuning, sweep and gain can be changed from any goroutine while
// the Voice is playing.
type Voice struct {
	engine     *engine.Engine
	amp        *env.ADSR
	samplerate float32
	stereo     bool

	mode                  atomic.Int32
	a4                    param
	sweepRate, sweepCents param
	gain                  param

	playing    engine.Mode
	phase      osc.Phase
	sweepPhase osc.Phase
	level      float32 // smoothed gain
	smooth     float32
	lastNote   float32
	lastVel    float32
	noteVel    float32
}

var _ cymaglyph.Ticker = &Voice{}

// New returns a mono Voice playing Crystalline.
func New(samplerate float32) *Voice {
	v := &Voice{
		engine:     engine.New(samplerate),
		amp:        env.NewADSR(5*time.Millisecond, 100*time.Millisecond, 0.8, 300*time.Millisecond, samplerate),
		samplerate: samplerate,
	}
	v.a4.Store(DefaultA4)
	v.gain.Store(1)
	v.level = 1
	v.smooth = 1 - math32.Exp(-1/(float32(gainSmoothing.Seconds())*samplerate))
	return v
}

// NewStereo returns a Voice with two outputs, spread by the mode's width.
func NewStereo(samplerate float32) *Voice {
	v := New(samplerate)
	v.stereo = true
	return v
}

// Engine returns the Voice's engine, for setting its tone parameters before
// playing.
func (v *Voice) Engine() *engine.Engine { return v.engine }

// SetEnvelope replaces the amplitude envelope. It is not safe to call while
// the Voice is playing.
func (v *Voice) SetEnvelope(attack, decay time.Duration, sustain float32, release time.Duration) {
	v.amp = env.NewADSR(attack, decay, sustain, release, v.samplerate)
}

// SetMode changes the synthesis mode. The engine is reset before the next
// sample in the new mode.
func (v *Voice) SetMode(m engine.Mode) {
	if !m.Valid() {
		m = engine.Crystalline
	}
	v.mode.Store(int32(m))
}

func (v *Voice) Mode() engine.Mode { return engine.Mode(v.mode.Load()) }

// SetA4 sets the tuning reference in Hz, clamped to [MinA4, MaxA4].
func (v *Voice) SetA4(hz float32) { v.a4.Store(interp.Clamp(hz, MinA4, MaxA4)) }

// SetSweep wobbles the pitch by up to cents either way at rate Hz. A zero
// rate turns the sweep off.
func (v *Voice) SetSweep(rate, cents float32) {
	v.sweepRate.Store(max(rate, 0))
	v.sweepCents.Store(interp.Clamp(cents, 0, MaxSweepCents))
}

// SetGain sets the output gain, which is approached smoothly.
func (v *Voice) SetGain(g float32) { v.gain.Store(max(g, 0)) }

// Active reports whether a note is sounding.
func (v *Voice) Active() bool { return v.amp.State() != env.Off }

func (*Voice) Inputs() int { return 2 }
func (v *Voice) Outputs() int {
	if v.stereo {
		return 2
	}
	return 1
}
func (v *Voice) String() string { return fmt.Sprintf("Voice(%v)", v.Mode()) }

func (v *Voice) Tick(in, out [][]float32) {
	var (
		m     = v.Mode()
		a4    = v.a4.Load()
		rate  = v.sweepRate.Load()
		cents = v.sweepCents.Load()
		gain  = v.gain.Load()
	)
	if m != v.playing {
		v.engine.Reset()
		v.playing = m
	}
	for i := range out[0] {
		note, vel := in[0][i], in[1][i]
		v.gate(note, vel)
		v.level += (gain - v.level) * v.smooth

		if !v.Active() {
			for c := range out {
				out[c][i] = 0
			}
			continue
		}

		f := NoteToFrequency(note, a4)
		if rate > 0 {
			sweep := osc.Sine(v.sweepPhase.Next(rate, v.samplerate))
			f *= math32.Exp2(cents * sweep / 1200)
		}
		g := v.amp.Next() * v.noteVel * v.level
		if v.stereo {
			l, r := v.engine.GenerateStereo(float32(v.phase), f, m)
			out[0][i], out[1][i] = l*g, r*g
		} else {
			out[0][i] = v.engine.GenerateSample(float32(v.phase), f, m) * g
		}
		v.phase.Next(f, v.samplerate)
	}
}

// gate starts a note when the velocity rises from zero, or when the note
// changes under a held velocity, which is how a stolen voice arrives.
func (v *Voice) gate(note, vel float32) {
	switch {
	case vel > 0 && (v.lastVel == 0 || note != v.lastNote):
		if !v.Active() {
			v.engine.Reset()
			v.phase.Reset()
			v.sweepPhase.Reset()
		}
		v.noteVel = min(vel, 1)
		v.engine.SetVelocity(v.noteVel)
		v.engine.Trigger()
		v.amp.Retrigger()
	case vel == 0 && v.lastVel > 0:
		v.amp.Gate(false)
	}
	v.lastNote, v.lastVel = note, vel
}

// package env provides envelope generators.
package env

import (
	"fmt"
	"time"

	"github.com/pfcm/cymaglyph"
)

// State is the stage an envelope is in.
type State byte

const (
	Off State = iota
	Attack
	Decay
	Sustain
	Release
)

func (s State) String() string {
	return []string{
		Off:     "x",
		Attack:  "A",
		Decay:   "D",
		Sustain: "S",
		Release: "R",
	}[s]
}

// ADSR is an attack-decay-sustain-release envelope. Opening the gate starts
// the attack, which ramps linearly to 1 then decays down to the sustain level.
// Closing it releases from wherever the envelope has got to back down to zero.
type ADSR struct {
	attack, decay, release time.Duration
	sus                    float32

	nAttack  int // samples
	nDecay   int
	nRelease int

	state   State
	counter int
	level   float32
	from    float32 // level when the attack or release began

	lastGate float32
}

var _ cymaglyph.Ticker = &ADSR{}

func NewADSR(attack, decay time.Duration,
	sustain float32,
	release time.Duration,
	samplerate float32) *ADSR {
	a := &ADSR{attack: attack, decay: decay, release: release}
	a.SetSustain(sustain)
	a.Prepare(samplerate)
	return a
}

// Prepare recomputes the stage lengths for a new sample rate.
func (a *ADSR) Prepare(samplerate float32) {
	a.nAttack = samples(a.attack, samplerate)
	a.nDecay = samples(a.decay, samplerate)
	a.nRelease = samples(a.release, samplerate)
}

// SetSustain sets the sustain level, clamped to [0, 1].
func (a *ADSR) SetSustain(s float32) {
	a.sus = min(max(s, 0), 1)
}

// Gate opens or closes the envelope. Opening an already open gate does
// nothing; use Retrigger to restart the attack.
func (a *ADSR) Gate(on bool) {
	switch {
	case on && (a.state == Off || a.state == Release):
		a.Retrigger()
	case !on && a.state != Off && a.state != Release:
		a.from = a.level
		a.enter(Release)
	}
}

// Retrigger restarts the attack from the current level, whatever stage the
// envelope is in.
func (a *ADSR) Retrigger() {
	a.from = a.level
	a.enter(Attack)
}

func (a *ADSR) State() State { return a.state }

// Level is the most recent output.
func (a *ADSR) Level() float32 { return a.level }

// Next advances the envelope by a sample and returns its level.
func (a *ADSR) Next() float32 {
	switch a.state {
	case Attack:
		a.counter++
		a.level = a.from + (1-a.from)*pos(a.counter, a.nAttack)
		if a.counter >= a.nAttack {
			a.enter(Decay)
		}
	case Decay:
		a.counter++
		a.level = 1 - (1-a.sus)*pos(a.counter, a.nDecay)
		if a.counter >= a.nDecay {
			a.enter(Sustain)
		}
	case Sustain:
		a.level = a.sus
	case Release:
		a.counter++
		a.level = a.from * (1 - pos(a.counter, a.nRelease))
		if a.counter >= a.nRelease {
			a.level = 0
			a.enter(Off)
		}
	default:
		a.level = 0
	}
	return a.level
}

// Reset returns the envelope to Off at zero.
func (a *ADSR) Reset() {
	a.enter(Off)
	a.level, a.from, a.lastGate = 0, 0, 0
}

func (*ADSR) Inputs() int  { return 1 }
func (*ADSR) Outputs() int { return 1 }
func (a *ADSR) String() string {
	return fmt.Sprintf("ADSR(%v,%v,%v,%v)", a.nAttack, a.nDecay, a.sus, a.nRelease)
}

// Tick treats its input as a gate: any non-zero value holds it open.
func (a *ADSR) Tick(in, out [][]float32) {
	for i, s := range in[0] {
		if s != 0 && a.lastGate == 0 {
			a.Gate(true)
		}
		if s == 0 && a.lastGate != 0 {
			a.Gate(false)
		}
		out[0][i] = a.Next()
		a.lastGate = s
	}
}

func (a *ADSR) enter(state State) {
	a.state = state
	a.counter = 0
}

// AD is a one-shot attack-decay envelope. Trigger restarts it from zero
// regardless of where it was in its cycle.
type AD struct {
	attack, decay time.Duration

	nAttack int // in samples
	nDecay  int
	state   State
	counter int
}

func AttackDecay(attack, decay time.Duration, samplerate float32) *AD {
	a := &AD{attack: attack, decay: decay}
	a.Prepare(samplerate)
	return a
}

// SetTimes changes the stage lengths directly in samples.
func (a *AD) SetTimes(attack, decay int) {
	a.nAttack, a.nDecay = max(attack, 0), max(decay, 0)
}

func (a *AD) Prepare(samplerate float32) {
	a.SetTimes(samples(a.attack, samplerate), samples(a.decay, samplerate))
}

func (a *AD) Trigger() { a.enter(Attack) }

// Active reports whether the envelope is still producing output.
func (a *AD) Active() bool { return a.state != Off }

func (a *AD) Next() float32 {
	var l float32
	switch a.state {
	case Attack:
		a.counter++
		l = pos(a.counter, a.nAttack)
		if a.counter >= a.nAttack {
			a.enter(Decay)
		}
	case Decay:
		l = 1 - pos(a.counter, a.nDecay)
		a.counter++
		if a.counter >= a.nDecay {
			a.enter(Off)
		}
	}
	return l
}

func (a *AD) Reset() { a.enter(Off) }

func (a *AD) enter(state State) {
	a.state = state
	a.counter = 0
}

// pos returns a coefficient between 0 and 1 depending on how far n is
// through a stage of length end. Zero length stages are already over.
func pos(n, end int) float32 {
	if end <= 0 {
		return 1
	}
	return min(float32(n)/float32(end), 1)
}

func samples(d time.Duration, samplerate float32) int {
	return int(d.Seconds()*float64(samplerate) + 0.5)
}

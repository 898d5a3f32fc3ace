package filter

import (
	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/interp"
)

// MaxFeedback is the most resonance a Ladder accepts. At 4 it will happily
// self-oscillate.
const MaxFeedback = 4

// minLadderCutoff keeps the stage poles off the unit circle.
const minLadderCutoff = 10

// Ladder provides a Moog-style 4 pole lowpass ladder filter. The feedback from
// the last stage is saturated before it is subtracted from the input, and the
// difference is saturated again before it enters the ladder, so it stays
// bounded whatever the resonance.
type Ladder struct {
	stage, delay [4]float32
	p, k         float32
	feedback     float32
}

var _ cymaglyph.Processor = &Ladder{}

func NewLadder(cutoff, feedback, samplerate float32) *Ladder {
	l := &Ladder{}
	l.SetParams(cutoff, feedback, samplerate)
	return l
}

// SetParams sets the cutoff in Hz and the feedback, which is clamped to
// [0, MaxFeedback].
func (l *Ladder) SetParams(cutoff, feedback, samplerate float32) {
	fc := interp.Clamp(cutoff, minLadderCutoff, Nyquist*samplerate)
	f := 2 * fc / samplerate
	l.p = f * (1.8 - 0.8*f)
	l.k = 2*l.p - 1
	l.feedback = interp.Clamp(feedback, 0, MaxFeedback)
}

func (l *Ladder) Process(in float32) float32 {
	x := math32.Tanh(in - math32.Tanh(l.feedback*l.stage[3]))
	for i := range l.stage {
		// each stage is a one pole lowpass fed by the average of this
		// input and the last.
		y := l.p*(x+l.delay[i]) - l.k*l.stage[i]
		l.delay[i] = x
		l.stage[i] = cymaglyph.Flush(y)
		x = l.stage[i]
	}
	return x
}

func (l *Ladder) Reset() {
	l.stage = [4]float32{}
	l.delay = [4]float32{}
}

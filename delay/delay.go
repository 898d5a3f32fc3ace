// package delay provides some delay lines.
package delay

import (
	"fmt"
	"time"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/internal/buffer"
	"github.com/pfcm/cymaglyph/interp"
)

// MaxFeedback bounds the feedback of a Line so it always dies away.
const MaxFeedback = 0.98

// Line is a single tap delay with feedback and a dry/wet mix.
type Line struct {
	rb       buffer.Ring
	length   time.Duration
	feedback float32
	mix      float32
}

var _ cymaglyph.Processor = &Line{}

// NewLine makes a fully wet delay of the given length with the given
// feedback.
func NewLine(length time.Duration, feedback, samplerate float32) *Line {
	l := &Line{mix: 1}
	l.SetFeedback(feedback)
	l.length = length
	l.Prepare(samplerate)
	return l
}

// Prepare reallocates the buffer for a new sample rate, keeping the length in
// time.
func (l *Line) Prepare(samplerate float32) {
	n := samples(l.length, samplerate)
	l.rb.Init(n, n)
}

// Resize sets the delay length in samples.
func (l *Line) Resize(n int) { l.rb.Resize(n) }

// Len is the delay length in samples.
func (l *Line) Len() int { return l.rb.Len() }

// SetFeedback sets the feedback, clamped to ±MaxFeedback.
func (l *Line) SetFeedback(fb float32) {
	l.feedback = interp.Clamp(fb, -MaxFeedback, MaxFeedback)
}

// SetMix sets the wet proportion of the output, from 0 (dry) to 1 (wet).
func (l *Line) SetMix(mix float32) {
	l.mix = interp.Clamp(mix, 0, 1)
}

func (l *Line) Process(in float32) float32 {
	out := l.rb.Oldest()
	l.rb.Write(cymaglyph.Flush(in + out*l.feedback))
	return interp.L(in, out, l.mix)
}

func (l *Line) Reset() { l.rb.Reset() }

func (l *Line) String() string { return fmt.Sprintf("delay.Line(%d)", l.rb.Len()) }

func samples(d time.Duration, samplerate float32) int {
	return max(int(d.Seconds()*float64(samplerate)+0.5), 1)
}

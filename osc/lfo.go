package osc

import "fmt"

// Shape is the waveform of an LFO.
type Shape byte

const (
	SineShape Shape = iota
	TriangleShape
	SawShape
	SquareShape
)

func (s Shape) String() string {
	switch s {
	case SineShape:
		return "sine"
	case TriangleShape:
		return "triangle"
	case SawShape:
		return "saw"
	case SquareShape:
		return "square"
	}
	return fmt.Sprintf("Shape(%d)", s)
}

// LFO is a free running low frequency oscillator with output in [-1, 1].
type LFO struct {
	Shape Shape

	rate       float32
	samplerate float32
	inc        float32
	phase      float32
}

func NewLFO(shape Shape, rate, samplerate float32) *LFO {
	l := &LFO{Shape: shape, rate: rate}
	l.Prepare(samplerate)
	return l
}

func (l *LFO) Prepare(samplerate float32) {
	l.samplerate = samplerate
	l.derive()
}

// SetRate sets the rate in Hz. It may be called before Prepare, in which case
// the LFO holds still until it has a sample rate.
func (l *LFO) SetRate(hz float32) {
	l.rate = hz
	l.derive()
}

func (l *LFO) derive() {
	if l.samplerate <= 0 {
		l.inc = 0
		return
	}
	l.inc = l.rate / l.samplerate
}

func (l *LFO) Rate() float32 { return l.rate }

// Next returns the current value and advances by a sample.
func (l *LFO) Next() float32 {
	var v float32
	switch l.Shape {
	case TriangleShape:
		v = Triangle(l.phase)
	case SawShape:
		v = Saw(l.phase)
	case SquareShape:
		v = Square(l.phase)
	default:
		v = Sine(l.phase)
	}
	l.phase = Wrap(l.phase + l.inc)
	return v
}

func (l *LFO) Reset() { l.phase = 0 }

// package cymaglyph is a small synthesizer: a bank of synthesis modes and the
// signal processing blocks they are built from.
package cymaglyph

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// MaxBlock is the largest number of samples a Ticker is asked to process in a
// single call.
const MaxBlock = 4096

// Processor processes audio one sample at a time.
type Processor interface {
	Process(in float32) float32
	// Reset clears any internal state, leaving parameters alone.
	Reset()
}

// Ticker is something that processes blocks of audio.
type Ticker interface {
	// Inputs returns the number of expected input channels.
	Inputs() int
	// Outputs returns the number of expected output channels.
	Outputs() int
	// Tick processes a chunk of audio. The first dimension of the input
	// slice is always Inputs, and the first dimension of the output slice
	// is always Outputs. Every channel has the same length, which is never
	// more than MaxBlock. Tickers may overwrite the input buffer.
	Tick(input, output [][]float32)

	fmt.Stringer
}

// Const is a Ticker that always fills its single output with a given value.
type Const struct {
	Val float32
}

var _ Ticker = Const{}

func (c Const) Inputs() int    { return 0 }
func (c Const) Outputs() int   { return 1 }
func (c Const) String() string { return fmt.Sprintf("Const(%v)", c.Val) }

func (c Const) Tick(_, output [][]float32) {
	for i := range output[0] {
		output[0][i] = c.Val
	}
}

// Scale is a Ticker that multiplies every input channel by a constant and then
// shifts it by another.
type Scale struct {
	N     int // channels, 0 means 1
	Mul   float32
	Shift float32
}

var _ Ticker = Scale{}

func (s Scale) Inputs() int    { return max(s.N, 1) }
func (s Scale) Outputs() int   { return max(s.N, 1) }
func (s Scale) String() string { return fmt.Sprintf("Scale(%v, %v)", s.Mul, s.Shift) }

func (s Scale) Tick(input, output [][]float32) {
	for c := range output {
		for i, x := range input[c] {
			output[c][i] = x*s.Mul + s.Shift
		}
	}
}

// Chain is a Ticker that applies a sequence of Tickers. The inputs and outputs
// all need to line up.
type Chain struct {
	ts              []Ticker
	inputs, outputs int
	b1, b2          [][]float32
}

var _ Ticker = Chain{}

// Serially chains the Tickers together. It panics if the outputs of any
// Ticker don't match the inputs of the next.
func Serially(ts ...Ticker) Chain {
	if len(ts) == 0 {
		panic(fmt.Errorf("empty chain"))
	}
	maxChans := ts[0].Inputs()
	for i := 1; i < len(ts); i++ {
		if ts[i-1].Outputs() != ts[i].Inputs() {
			panic(fmt.Errorf(
				"outputs/inputs mismatch:\n%v (%d outputs)\n->\n%v (%d inputs)",
				ts[i-1], ts[i-1].Outputs(), ts[i], ts[i].Inputs()))
		}
		maxChans = max(ts[i].Inputs(), maxChans)
	}
	maxChans = max(ts[len(ts)-1].Outputs(), maxChans)
	return Chain{
		ts:      ts,
		inputs:  ts[0].Inputs(),
		outputs: ts[len(ts)-1].Outputs(),
		b1:      channels(maxChans),
		b2:      channels(maxChans),
	}
}

func channels(n int) [][]float32 {
	b := make([][]float32, n)
	for i := range b {
		b[i] = make([]float32, MaxBlock)
	}
	return b
}

func (c Chain) Inputs() int    { return c.inputs }
func (c Chain) Outputs() int   { return c.outputs }
func (c Chain) String() string { return fmt.Sprintf("Chain(%v)", c.ts) }

func (c Chain) Tick(input, output [][]float32) {
	n := len(output[0])
	in, out := c.b1, c.b2
	for i := range in {
		in[i] = in[i][:n]
		out[i] = out[i][:n]
	}
	for i := range input {
		copy(in[i], input[i])
	}
	for _, t := range c.ts {
		ti, to := in[:t.Inputs()], out[:t.Outputs()]
		for _, o := range to {
			clear(o)
		}
		t.Tick(ti, to)
		in, out = out, in
	}
	for i := range output {
		copy(output[i], in[i])
	}
}

// Mixer mixes together a number of inputs into one, first applying the
// provided gains.
type Mixer struct {
	Gains []float32
}

var _ Ticker = Mixer{}

// Sum returns a Mixer that sums the given number of inputs down to one,
// reducing their gains to keep a roughly constant power.
func Sum(n int) Mixer {
	g := 1 / math32.Sqrt(float32(n))
	gs := make([]float32, n)
	for i := range gs {
		gs[i] = g
	}
	return Mixer{Gains: gs}
}

func (m Mixer) Inputs() int    { return len(m.Gains) }
func (m Mixer) Outputs() int   { return 1 }
func (m Mixer) String() string { return fmt.Sprintf("Mixer(%d)", len(m.Gains)) }

func (m Mixer) Tick(input, output [][]float32) {
	for i := range output[0] {
		var s float32
		for j, g := range m.Gains {
			s += input[j][i] * g
		}
		output[0][i] = s
	}
}

// Concurrent is a Ticker that joins a group of Tickers side by side. Its inputs
// and outputs are the concatenation of theirs.
type Concurrent struct {
	ts              []Ticker
	inputs, outputs int
}

var _ Ticker = Concurrent{}

func Concurrently(ts ...Ticker) Concurrent {
	ins, outs := 0, 0
	for _, t := range ts {
		ins += t.Inputs()
		outs += t.Outputs()
	}
	return Concurrent{
		ts:      ts,
		inputs:  ins,
		outputs: outs,
	}
}

func (c Concurrent) Inputs() int  { return c.inputs }
func (c Concurrent) Outputs() int { return c.outputs }

func (c Concurrent) String() string {
	s := make([]string, len(c.ts))
	for i, t := range c.ts {
		s[i] = t.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(s, ","))
}

func (c Concurrent) Tick(inputs, outputs [][]float32) {
	in, out := 0, 0
	for _, t := range c.ts {
		ni, no := in+t.Inputs(), out+t.Outputs()
		t.Tick(inputs[in:ni], outputs[out:no])
		in, out = ni, no
	}
}

// Process wraps a Processor as a Ticker with one input and one output.
func Process(p Processor) Ticker {
	return procTicker{p}
}

type procTicker struct {
	p Processor
}

func (procTicker) Inputs() int      { return 1 }
func (procTicker) Outputs() int     { return 1 }
func (t procTicker) String() string { return fmt.Sprintf("Process(%T)", t.p) }

func (t procTicker) Tick(in, out [][]float32) {
	for i, x := range in[0] {
		out[0][i] = t.p.Process(x)
	}
}

// clipKnee is where SoftClip starts to bend.
const clipKnee = 0.7

// SoftClip passes anything quieter than the knee untouched and squashes the
// rest smoothly towards ±1, never reaching it.
func SoftClip(x float32) float32 {
	a := math32.Abs(x)
	if a <= clipKnee {
		return x
	}
	const room = 1 - clipKnee
	return math32.Copysign(clipKnee+room*math32.Tanh((a-clipKnee)/room), x)
}

// tiny is the magnitude below which Flush rounds to zero.
const tiny = 1e-15

// Flush returns x, or zero if x is NaN, infinite or small enough to be heading
// for denormal territory.
func Flush(x float32) float32 {
	if math32.IsNaN(x) || math32.IsInf(x, 0) || math32.Abs(x) < tiny {
		return 0
	}
	return x
}

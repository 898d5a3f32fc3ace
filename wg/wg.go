// package wg implements digital waveguide-ish algorithms.
package wg

import (
	"fmt"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/internal/buffer"
	"github.com/pfcm/cymaglyph/interp"
)

const (
	// MinFrequency is the lowest pitch a KS can be tuned to without
	// allocating.
	MinFrequency = 20
	// MaxFeedback keeps the loop gain strictly below one.
	MaxFeedback = 0.999
)

// KS implements a fairly straightforward, original Karplus-Strong algorithm
// focused on string synthesis: a delay line as long as one period of the
// note, fed back through a two point average.
//
// As a Ticker it accepts two inputs: the first is a trigger, which plucks the
// string with a buffer of noise whenever it goes from zero to non-zero, and
// the second is the frequency in Hz.
type KS struct {
	rb         buffer.Ring
	samplerate float32
	freq       float32

	feedback, damping float32
	last              float32

	noise   *cymaglyph.Noise
	prevTrg float32
}

var (
	_ cymaglyph.Processor = &KS{}
	_ cymaglyph.Ticker    = &KS{}
)

func NewKS(samplerate float32) *KS {
	k := &KS{
		feedback: 0.995,
		damping:  0.5,
		noise:    cymaglyph.NewNoise(),
	}
	k.Prepare(samplerate)
	return k
}

// Prepare allocates room for the lowest note at the given sample rate.
func (k *KS) Prepare(samplerate float32) {
	k.samplerate = samplerate
	n := int(samplerate/MinFrequency) + 1
	k.rb.Init(n, n)
	k.last = 0
	if k.freq > 0 {
		f := k.freq
		k.freq = 0
		k.SetFrequency(f)
	}
}

// SetParams sets the loop feedback, at most MaxFeedback, and the damping in
// [0, 1]. More damping darkens the string faster.
func (k *KS) SetParams(feedback, damping float32) {
	k.feedback = interp.Clamp(feedback, 0, MaxFeedback)
	k.damping = interp.Clamp(damping, 0, 1)
}

// SetFrequency tunes the string. The loop is only resized when its length in
// samples changes, and never beyond what Prepare allocated.
func (k *KS) SetFrequency(f float32) {
	if f == k.freq || f <= 0 {
		return
	}
	k.freq = f
	n := interp.Clamp(int(k.samplerate/f+0.5), 2, k.rb.Cap())
	if n != k.rb.Len() {
		k.rb.Resize(n)
	}
}

// Len is the loop length in samples.
func (k *KS) Len() int { return k.rb.Len() }

// Process adds the excitation into the loop and returns the oldest sample.
func (k *KS) Process(excitation float32) float32 {
	out := k.rb.Oldest()
	filtered := k.feedback * interp.L(out, k.last, k.damping)
	k.last = out
	k.rb.Write(cymaglyph.Flush(excitation + filtered))
	return out
}

// Pluck fills the loop with noise at the given amplitude.
func (k *KS) Pluck(amp float32) {
	for i := 0; i < k.rb.Len(); i++ {
		k.rb.Write(k.noise.Next() * amp)
	}
}

// Reset silences the string. The noise used by Pluck restarts too.
func (k *KS) Reset() {
	k.rb.Reset()
	k.last, k.prevTrg = 0, 0
	k.noise.Reset()
}

func (*KS) Inputs() int      { return 2 }
func (*KS) Outputs() int     { return 1 }
func (k *KS) String() string { return fmt.Sprintf("KS(%d)", k.rb.Len()) }

func (k *KS) Tick(in, out [][]float32) {
	for i := range out[0] {
		k.SetFrequency(in[1][i])
		if trg := in[0][i]; trg != 0 && k.prevTrg == 0 {
			k.Pluck(min(trg, 1))
		}
		k.prevTrg = in[0][i]
		out[0][i] = k.Process(0)
	}
}

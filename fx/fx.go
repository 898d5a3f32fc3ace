// package fx has the colour and texture effects that sit after the sound
// sources: bit reduction, phasing, stereo widening and partial warping.
package fx

import (
	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/interp"
)

// BitCrusher reduces both the amplitude resolution and the effective sample
// rate of a signal.
type BitCrusher struct {
	levels    float32
	reduction int

	held  float32
	count int
}

var _ cymaglyph.Processor = &BitCrusher{}

// NewBitCrusher quantises to 2^bits levels and holds each quantised sample
// for reduction samples.
func NewBitCrusher(bits float32, reduction int) *BitCrusher {
	b := &BitCrusher{}
	b.SetParams(bits, reduction)
	return b
}

// SetParams sets the bit depth, between 1 and 24, and the number of samples
// each value is held for, at least 1.
func (b *BitCrusher) SetParams(bits float32, reduction int) {
	bits = interp.Clamp(bits, 1, 24)
	b.levels = math32.Exp2(bits) / 2
	b.reduction = max(reduction, 1)
}

func (b *BitCrusher) Process(in float32) float32 {
	if b.count == 0 {
		b.held = math32.Floor(in*b.levels+0.5) / b.levels
	}
	b.count++
	if b.count >= b.reduction {
		b.count = 0
	}
	return b.held
}

func (b *BitCrusher) Reset() { b.held, b.count = 0, 0 }

// Warp bends the partials of an additive voice away from exact harmonics,
// more so for higher partials.
type Warp struct {
	Amount float32
}

// Ratio returns the frequency multiple to use for harmonic h at phase.
func (w Warp) Ratio(h, phase float32) float32 {
	return h * (1 + h*0.001*w.Amount*math32.Sin(phase*h))
}

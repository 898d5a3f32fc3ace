package delay

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/internal/buffer"
	"github.com/pfcm/cymaglyph/interp"
)

// ChorusSize is the number of samples in a Chorus buffer, which bounds the
// longest delay it can reach.
const ChorusSize = 4096

// Chorus is a single delay tap swept around a base delay by a sine LFO.
type Chorus struct {
	rb buffer.Ring

	rate        float32 // Hz
	base, depth time.Duration
	mix         float32

	samplerate float32
	inc        float32
	baseN      float32 // samples
	depthN     float32
	phase      float32
}

var _ cymaglyph.Processor = &Chorus{}

// NewChorus makes a chorus sweeping at rate Hz between base-depth and
// base+depth.
func NewChorus(rate float32, base, depth time.Duration, mix, samplerate float32) *Chorus {
	c := &Chorus{}
	c.rb.Init(ChorusSize, ChorusSize)
	c.SetParams(rate, base, depth, mix)
	c.Prepare(samplerate)
	return c
}

// SetParams changes the sweep. The mix is clamped to [0, 1].
func (c *Chorus) SetParams(rate float32, base, depth time.Duration, mix float32) {
	c.rate, c.base, c.depth = rate, base, depth
	c.mix = interp.Clamp(mix, 0, 1)
	c.derive()
}

// Prepare rederives the sample counts for a new sample rate.
func (c *Chorus) Prepare(samplerate float32) {
	c.samplerate = samplerate
	c.derive()
}

func (c *Chorus) derive() {
	if c.samplerate <= 0 {
		return
	}
	c.inc = c.rate / c.samplerate
	c.baseN = float32(c.base.Seconds()) * c.samplerate
	c.depthN = float32(c.depth.Seconds()) * c.samplerate
}

// Delay returns the current delay in samples.
func (c *Chorus) Delay() float32 {
	d := c.baseN + c.depthN*math32.Sin(2*math32.Pi*c.phase)
	return interp.Clamp(d, 1, ChorusSize-1)
}

func (c *Chorus) Process(in float32) float32 {
	wet := c.rb.TapFrac(c.Delay())
	c.rb.Write(in)
	c.phase += c.inc
	if c.phase >= 1 {
		c.phase--
	}
	return interp.L(in, wet, c.mix)
}

func (c *Chorus) Reset() {
	c.rb.Reset()
	c.phase = 0
}

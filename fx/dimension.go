package fx

import (
	"fmt"
	"time"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/internal/buffer"
	"github.com/pfcm/cymaglyph/interp"
)

const (
	// MaxSize is the largest Dimension size.
	MaxSize = 2

	nearTap = 10 * time.Millisecond
	farTap  = 20 * time.Millisecond
)

// Dimension spreads a mono signal into stereo with two short Haas delays, one
// for each side. Diffusion blends each side's tap with the other's.
type Dimension struct {
	rb buffer.Ring

	size, diffusion, width float32

	samplerate float32
	near, far  float32 // samples
}

var _ cymaglyph.Ticker = &Dimension{}

// NewDimension makes a Dimension with the taps scaled by size, at most
// MaxSize.
func NewDimension(size, diffusion, width, samplerate float32) *Dimension {
	d := &Dimension{}
	d.SetParams(size, diffusion, width)
	d.Prepare(samplerate)
	return d
}

func (d *Dimension) Prepare(samplerate float32) {
	d.samplerate = samplerate
	n := int(float32(farTap.Seconds())*MaxSize*samplerate) + 2
	d.rb.Init(n, n)
	d.derive()
}

// SetParams sets the size of the space, the diffusion in [0, 1] and the
// width in [0, 1], where 0 leaves the signal mono.
func (d *Dimension) SetParams(size, diffusion, width float32) {
	d.size = interp.Clamp(size, 0.1, MaxSize)
	d.diffusion = interp.Clamp(diffusion, 0, 1)
	d.SetWidth(width)
	d.derive()
}

func (d *Dimension) SetWidth(width float32) { d.width = interp.Clamp(width, 0, 1) }

func (d *Dimension) derive() {
	d.near = float32(nearTap.Seconds()) * d.size * d.samplerate
	d.far = float32(farTap.Seconds()) * d.size * d.samplerate
}

// Process returns the left and right outputs for one input sample.
func (d *Dimension) Process(in float32) (l, r float32) {
	a, b := d.rb.TapFrac(d.near), d.rb.TapFrac(d.far)
	d.rb.Write(in)
	half := d.diffusion / 2
	tl := interp.L(a, b, half)
	tr := interp.L(b, a, half)
	return interp.L(in, tl, d.width/2), interp.L(in, tr, d.width/2)
}

func (d *Dimension) Reset() { d.rb.Reset() }

func (*Dimension) Inputs() int  { return 1 }
func (*Dimension) Outputs() int { return 2 }
func (d *Dimension) String() string {
	return fmt.Sprintf("Dimension(%v, %v, %v)", d.size, d.diffusion, d.width)
}

func (d *Dimension) Tick(in, out [][]float32) {
	for i, x := range in[0] {
		out[0][i], out[1][i] = d.Process(x)
	}
}

package cymaglyph

import "fmt"

// Noise makes white noise with a 32 bit xorshift register. It is entirely
// deterministic: two Noises with the same seed produce the same sequence.
type Noise struct {
	seed  uint32
	state uint32
}

const defaultSeed uint32 = 0x2545f491

// NewNoise returns a Noise with the default seed.
func NewNoise() *Noise {
	return &Noise{seed: defaultSeed, state: defaultSeed}
}

// Seed restarts the sequence from s. A zero seed would never leave zero, so it
// is replaced with the default.
func (n *Noise) Seed(s uint32) {
	if s == 0 {
		s = defaultSeed
	}
	n.seed, n.state = s, s
}

// Reset restarts the sequence from the current seed.
func (n *Noise) Reset() {
	if n.seed == 0 {
		n.seed = defaultSeed
	}
	n.state = n.seed
}

// Next returns the next sample, uniform in [-1, 1).
func (n *Noise) Next() float32 {
	x := n.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	n.state = x
	return float32(int32(x)>>8) / (1 << 23)
}

// Uniform returns the next sample mapped to [lo, hi).
func (n *Noise) Uniform(lo, hi float32) float32 {
	return lo + (hi-lo)*(n.Next()+1)*0.5
}

var _ Ticker = &Noise{}

func (*Noise) Inputs() int      { return 0 }
func (*Noise) Outputs() int     { return 1 }
func (n *Noise) String() string { return fmt.Sprintf("Noise(%08x)", n.seed) }

func (n *Noise) Tick(_, out [][]float32) {
	for i := range out[0] {
		out[0][i] = n.Next()
	}
}

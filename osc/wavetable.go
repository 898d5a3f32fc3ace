package osc

import (
	"fmt"
	"sync"

	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/interp"
)

const (
	// NumTables is the number of tables a Wavetable morphs between.
	NumTables = 8
	// TableSize is the number of samples in one cycle of each table.
	TableSize = 2048
)

type bank [NumTables][TableSize]float32

// tables are built on first use and never written again, so every Wavetable
// shares them.
var tables = sync.OnceValue(func() *bank {
	b := new(bank)
	for t := range b {
		fillTable(b[t][:], t)
	}
	return b
})

// fillTable writes a cycle of 1+2t harmonics rolling off as 1/h, getting a
// little darker for higher tables, then squashes it through a tanh so every
// table has a similar loudness.
func fillTable(tab []float32, t int) {
	n := 1 + 2*t
	var peak float32
	for i := range tab {
		p := float32(i) / float32(len(tab))
		var s float32
		for h := 1; h <= n; h++ {
			amp := 1 / (float32(h) + float32(t)*0.5)
			s += math32.Sin(2*math32.Pi*p*float32(h)) * amp
		}
		tab[i] = s
		peak = max(peak, math32.Abs(s))
	}
	norm := math32.Tanh(1)
	for i, s := range tab {
		tab[i] = 0.5 * math32.Tanh(s/peak) / norm
	}
}

// Table returns a copy of the i'th table.
func Table(i int) []float32 {
	t := tables()[i]
	return t[:]
}

// Wavetable is an oscillator that reads from a shared bank of tables of
// increasing brightness, blending between two neighbouring tables according to
// its morph position.
type Wavetable struct {
	tabs  *bank
	morph float32

	// For use as a Ticker.
	phase      Phase
	samplerate float32
}

var _ cymaglyph.Ticker = &Wavetable{}

func NewWavetable(samplerate float32) *Wavetable {
	return &Wavetable{tabs: tables(), samplerate: samplerate}
}

func (w *Wavetable) Prepare(samplerate float32) { w.samplerate = samplerate }

// SetMorph sets the position between tables, wrapped into [0, NumTables).
// Between the last table and NumTables it blends back towards the first.
func (w *Wavetable) SetMorph(m float32) {
	m = math32.Mod(m, NumTables)
	if m < 0 {
		m += NumTables
	}
	if m >= NumTables {
		m = 0
	}
	w.morph = m
}

func (w *Wavetable) Morph() float32 { return w.morph }

// Generate returns the sample at phase, which should be in [0, 1].
func (w *Wavetable) Generate(phase float32) float32 {
	a := int(w.morph)
	b := (a + 1) % NumTables
	blend := w.morph - float32(a)
	pos := max(phase, 0) * TableSize
	sa := interp.At(w.tabs[a][:], pos)
	if blend == 0 {
		return sa
	}
	return interp.L(sa, interp.At(w.tabs[b][:], pos), blend)
}

func (w *Wavetable) Reset() { w.phase = 0 }

func (*Wavetable) Inputs() int      { return 1 }
func (*Wavetable) Outputs() int     { return 1 }
func (w *Wavetable) String() string { return fmt.Sprintf("osc.Wavetable(%v)", w.morph) }

// Tick reads a frequency in Hz from its input.
func (w *Wavetable) Tick(in, out [][]float32) {
	for i, f := range in[0] {
		out[0][i] = w.Generate(float32(w.phase))
		w.phase.Next(f, w.samplerate)
	}
}

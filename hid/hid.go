// package hid handles human interface devices. Or IO that uses the same protocols,
// like MIDI.
package hid

import (
	"fmt"
	"sync/atomic"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/midi"
)

// MidiNotes polyphonically tracks MIDI note on and off messages, providing two
// outputs per voice: one containing the MIDI note number and the other the
// velocity, scaled to [0, 1]. Both are zero until the voice gets its first
// note, and multiple voices are interleaved.
//
// When every voice is busy a new note takes over the one that started
// longest ago.
type MidiNotes struct {
	voices []atomic.Uint32 // used<<16 | note<<8 | velocity

	// only touched by the goroutine reading messages.
	when   []uint64
	events uint64
}

const used = 1 << 16

var _ cymaglyph.Ticker = &MidiNotes{}

// NewMidiNotes subscribes to the note messages from d. It stops following
// them once the Dispatcher stops listening.
func NewMidiNotes(d *midi.Dispatcher, voices int, opts ...midi.SubscriptionFilter) *MidiNotes {
	md := newMidiNotes(voices)
	c := d.Subscribe(append(opts, midi.OnlyNotes())...)
	go func() {
		for msg := range c {
			md.handle(msg)
		}
	}()
	return md
}

func newMidiNotes(voices int) *MidiNotes {
	return &MidiNotes{
		voices: make([]atomic.Uint32, voices),
		when:   make([]uint64, voices),
	}
}

func (m *MidiNotes) handle(msg midi.Message) {
	switch msg.Type {
	case midi.NoteOn:
		m.noteOn(msg.Note, msg.Velocity)
	case midi.NoteOff:
		m.noteOff(msg.Note)
	}
}

func unpack(x uint32) (note, vel byte) { return byte(x >> 8), byte(x) }

func (m *MidiNotes) noteOn(n, v byte) {
	m.events++
	i := m.pick(n)
	m.voices[i].Store(used | uint32(n)<<8 | uint32(v))
	m.when[i] = m.events
}

// pick chooses a voice for note n: one already playing it, then the first
// idle voice, then the oldest.
func (m *MidiNotes) pick(n byte) int {
	idle, oldest := -1, 0
	for i := range m.voices {
		note, vel := unpack(m.voices[i].Load())
		switch {
		case vel > 0 && note == n:
			return i
		case vel == 0 && idle < 0:
			idle = i
		case m.when[i] < m.when[oldest]:
			oldest = i
		}
	}
	if idle >= 0 {
		return idle
	}
	return oldest
}

func (m *MidiNotes) noteOff(n byte) {
	for i := range m.voices {
		x := m.voices[i].Load()
		note, vel := unpack(x)
		if vel > 0 && note == n {
			// Only set velocity to 0, keep outputting the same
			// note.
			m.voices[i].Store(x &^ 0xFF)
			return
		}
	}
}

func (m *MidiNotes) Inputs() int    { return 0 }
func (m *MidiNotes) Outputs() int   { return len(m.voices) * 2 }
func (m *MidiNotes) String() string { return fmt.Sprintf("MidiNotes(%d)", len(m.voices)) }

func (m *MidiNotes) Tick(_, out [][]float32) {
	for i := range m.voices {
		x := m.voices[i].Load()
		if x&used == 0 {
			continue
		}
		n, v := unpack(x)
		note, vel := float32(n), float32(v)/127
		for j := range out[i*2] {
			out[i*2][j] = note
			out[i*2+1][j] = vel
		}
	}
}

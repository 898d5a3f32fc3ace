package midi

import (
	"errors"
	"fmt"
)

// Type is the type of a MIDI 1.0 channel voice message. It is also the high
// 4 bits of the status byte.
type Type byte

const (
	NoteOff Type = 0x8 + iota
	NoteOn
	PolyPressure
	ControlChange
	ProgramChange
	ChannelPressure
	PitchBend
)

func (t Type) String() string {
	switch t {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case PolyPressure:
		return "PolyPressure"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case ChannelPressure:
		return "ChannelPressure"
	case PitchBend:
		return "PitchBend"
	}
	return fmt.Sprintf("Type(%#x)", byte(t))
}

// dataBytes is the number of data bytes following each type of status byte.
var dataBytes = [...]int{
	NoteOff - NoteOff:         2,
	NoteOn - NoteOff:          2,
	PolyPressure - NoteOff:    2,
	ControlChange - NoteOff:   2,
	ProgramChange - NoteOff:   1,
	ChannelPressure - NoteOff: 1,
	PitchBend - NoteOff:       2,
}

// Message is a decoded channel voice message.
type Message struct {
	Type    Type
	Channel byte // 0-15
	// MIDI note for note on/note off/poly pressure, but also
	// index for control change and program for program change.
	Note      byte
	Velocity  byte   // for note {on, off}, {poly,channel} pressure, and the control value.
	PitchBend uint16 // 14 bits, centred on 0x2000
}

func (m Message) String() string {
	switch m.Type {
	case ProgramChange:
		return fmt.Sprintf("%v(ch=%d, program=%d)", m.Type, m.Channel, m.Note)
	case ChannelPressure:
		return fmt.Sprintf("%v(ch=%d, pressure=%d)", m.Type, m.Channel, m.Velocity)
	case PitchBend:
		return fmt.Sprintf("%v(ch=%d, bend=%d)", m.Type, m.Channel, int(m.PitchBend)-0x2000)
	case ControlChange:
		return fmt.Sprintf("%v(ch=%d, cc=%d, value=%d)", m.Type, m.Channel, m.Note, m.Velocity)
	}
	return fmt.Sprintf("%v(ch=%d, note=%d, vel=%d)", m.Type, m.Channel, m.Note, m.Velocity)
}

var (
	// ErrNoStatus is returned for data bytes with no status byte to apply
	// them to.
	ErrNoStatus = errors.New("midi: data byte without status")
	// ErrTruncated is returned when the input ends part way through a
	// message.
	ErrTruncated = errors.New("midi: truncated message")
)

// Parser decodes a stream of MIDI 1.0 bytes. It remembers the running
// status between calls, so a stream can be fed to it in pieces as long as
// each piece holds whole messages.
type Parser struct {
	status byte
}

// Parse decodes every channel voice message in raw, appending them to msgs.
// System messages are skipped: exclusive messages up to their end byte,
// common messages along with their data, and real time messages, which do not
// disturb the running status. A note on with zero velocity is reported as a
// note off.
func (p *Parser) Parse(msgs []Message, raw []byte) ([]Message, error) {
	for len(raw) > 0 {
		b := raw[0]
		switch {
		case b >= 0xF8:
			raw = raw[1:]
			continue
		case b == 0xF0:
			p.status = 0
			end := 1
			for end < len(raw) && raw[end] != 0xF7 {
				end++
			}
			raw = raw[min(end+1, len(raw)):]
			continue
		case b >= 0xF0:
			p.status = 0
			n := 0
			switch b {
			case 0xF1, 0xF3:
				n = 1
			case 0xF2:
				n = 2
			}
			if len(raw) < n+1 {
				return msgs, ErrTruncated
			}
			raw = raw[n+1:]
			continue
		case b >= 0x80:
			p.status = b
			raw = raw[1:]
		case p.status == 0:
			return msgs, ErrNoStatus
		}

		t := Type(p.status >> 4)
		n := dataBytes[t-NoteOff]
		if len(raw) < n {
			return msgs, ErrTruncated
		}
		msg := Message{Type: t, Channel: p.status & 0xF}
		switch t {
		case ProgramChange:
			msg.Note = raw[0] & 0x7F
		case ChannelPressure:
			msg.Velocity = raw[0] & 0x7F
		case PitchBend:
			msg.PitchBend = uint16(raw[1]&0x7F)<<7 | uint16(raw[0]&0x7F)
		default:
			msg.Note = raw[0] & 0x7F
			msg.Velocity = raw[1] & 0x7F
		}
		if msg.Type == NoteOn && msg.Velocity == 0 {
			msg.Type = NoteOff
		}
		msgs = append(msgs, msg)
		raw = raw[n:]
	}
	return msgs, nil
}

// ParseMessages decodes a self-contained buffer of MIDI 1.0 bytes.
func ParseMessages(raw []byte) ([]Message, error) {
	var p Parser
	return p.Parse(nil, raw)
}

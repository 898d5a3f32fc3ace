// package midi handles midi.
package midi

import (
	"context"
	"sync"
	"sync/atomic"
)

// ChannelMask has bit n set to select channel n.
type ChannelMask uint16

const AllChannels ChannelMask = 0xFFFF

// Channels returns a mask selecting just the given channels.
func Channels(chs ...byte) ChannelMask {
	var m ChannelMask
	for _, c := range chs {
		m |= 1 << (c & 0xF)
	}
	return m
}

// Listener is function that blocks until the context is done, calling a
// provided callback with raw MIDI 1.0 bytes as they arrive.
type Listener func(context.Context, func([]byte)) error

type sub struct {
	f filter
	c chan Message
}

// Dispatcher routes MIDI messages to a set of channels.
type Dispatcher struct {
	mu     sync.Mutex
	subs   []sub
	closed bool

	parser  Parser
	msgs    []Message
	dropped atomic.Uint64

	done chan struct{}
	err  error
}

// Listen starts listening for MIDI messages in the background with the provided
// Listener. It returns a Dispatcher whose Subscribe message can be used to get
// a channel on which to receive Messages. Every subscribed channel is closed
// when the Listener returns.
func Listen(ctx context.Context, l Listener) *Dispatcher {
	d := &Dispatcher{done: make(chan struct{})}

	go func() {
		defer close(d.done)
		defer d.close()
		d.err = l(ctx, d.receive)
	}()

	return d
}

// Wait blocks until the Listener has returned, and returns its error.
func (d *Dispatcher) Wait() error {
	<-d.done
	return d.err
}

// Dropped returns the number of messages that were thrown away, either because
// they could not be parsed or because a subscriber was not keeping up.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

func (d *Dispatcher) receive(raw []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	msgs, err := d.parser.Parse(d.msgs[:0], raw)
	if err != nil {
		d.dropped.Add(1)
		d.parser = Parser{}
	}
	for _, m := range msgs {
		d.dispatch(m)
	}
	d.msgs = msgs
}

// dispatch must be called with mu held.
func (d *Dispatcher) dispatch(msg Message) {
	for _, s := range d.subs {
		if !s.f.match(msg) {
			continue
		}
		select {
		case s.c <- msg:
		default:
			d.dropped.Add(1)
		}
	}
}

func (d *Dispatcher) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.subs {
		close(s.c)
	}
	d.subs = nil
	d.closed = true
}

// Subscribe returns a channel receiving every message that passes the
// filters. If the Listener has already returned the channel is closed.
func (d *Dispatcher) Subscribe(opts ...SubscriptionFilter) <-chan Message {
	f := defaultFilter()
	for _, o := range opts {
		o(&f)
	}

	c := make(chan Message, 100)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		close(c)
		return c
	}
	d.subs = append(d.subs, sub{f: f, c: c})
	return c
}

type filter struct {
	channels ChannelMask
	types    [PitchBend - NoteOff + 1]bool
}

func defaultFilter() filter {
	f := filter{
		channels: AllChannels,
	}
	for i := range f.types {
		f.types[i] = true
	}
	return f
}

func (f *filter) match(msg Message) bool {
	if f.channels&(1<<msg.Channel) == 0 {
		return false
	}
	return f.types[msg.Type-NoteOff]
}

type SubscriptionFilter func(f *filter)

func WithChannelMask(cm ChannelMask) SubscriptionFilter {
	return func(f *filter) { f.channels = cm }
}

func WithoutType(t Type) SubscriptionFilter {
	return func(f *filter) {
		if t >= NoteOff && t <= PitchBend {
			f.types[t-NoteOff] = false
		}
	}
}

// OnlyNotes filters out everything but note on and note off.
func OnlyNotes() SubscriptionFilter {
	return func(f *filter) {
		for t := PolyPressure; t <= PitchBend; t++ {
			f.types[t-NoteOff] = false
		}
	}
}

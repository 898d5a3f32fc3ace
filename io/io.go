// package io does audio in and out.
package io

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/gen2brain/malgo"

	"github.com/pfcm/cymaglyph"
)

// runner ticks a Ticker in blocks of at most cymaglyph.MaxBlock frames,
// optionally recording everything it produces.
type runner struct {
	t       cymaglyph.Ticker
	in, out [][]float32
	rec     *Recorder
	err     error
}

func newRunner(t cymaglyph.Ticker, rec *Recorder) *runner {
	return &runner{
		t:   t,
		in:  block(t.Inputs()),
		out: block(t.Outputs()),
		rec: rec,
	}
}

func block(channels int) [][]float32 {
	b := make([][]float32, channels)
	for i := range b {
		b[i] = make([]float32, cymaglyph.MaxBlock)
	}
	return b
}

// tick runs the Ticker for n <= MaxBlock frames, returning the outputs.
// Inputs are whatever has been left in r.in.
func (r *runner) tick(n int) [][]float32 {
	for i := range r.in {
		r.in[i] = r.in[i][:n]
	}
	for i := range r.out {
		r.out[i] = r.out[i][:n]
		clear(r.out[i])
	}
	r.t.Tick(r.in, r.out)
	if r.rec != nil && r.err == nil {
		r.err = r.rec.Write(r.out)
	}
	return r.out
}

// interleave fills dst, which holds a whole number of frames of little endian
// float32 samples, from the Ticker. src, if not nil, holds the input frames
// in the same format.
func (r *runner) interleave(dst, src []byte) {
	var (
		outs   = len(r.out)
		ins    = len(r.in)
		frames = len(dst) / (4 * outs)
	)
	for off := 0; off < frames; off += cymaglyph.MaxBlock {
		n := min(cymaglyph.MaxBlock, frames-off)
		if src != nil {
			for c := range r.in {
				r.in[c] = r.in[c][:n]
			}
			for i := 0; i < n; i++ {
				for c := range r.in {
					j := 4 * ((off+i)*ins + c)
					r.in[c][i] = math.Float32frombits(binary.LittleEndian.Uint32(src[j:]))
				}
			}
		}
		out := r.tick(n)
		for i := 0; i < n; i++ {
			for c, o := range out {
				j := 4 * ((off+i)*outs + c)
				binary.LittleEndian.PutUint32(dst[j:], math.Float32bits(o[i]))
			}
		}
	}
}

// PlayWithDefaults uses the default input and outputs to run the
// provided Ticker. Input is only captured if the Ticker has any inputs. It
// blocks until the provided context is cancelled. If rec is not nil, the
// output is also written to it; it is not closed.
func PlayWithDefaults(ctx context.Context, t cymaglyph.Ticker, samplerate int, rec *Recorder) error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		fmt.Fprint(os.Stderr, msg)
	})
	if err != nil {
		return fmt.Errorf("initialising malgo: %w", err)
	}
	defer func() {
		mctx.Uninit()
		mctx.Free()
	}()

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	if t.Inputs() > 0 {
		cfg = malgo.DefaultDeviceConfig(malgo.Duplex)
		cfg.Capture.Format = malgo.FormatF32
		cfg.Capture.Channels = uint32(t.Inputs())
	}
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = uint32(t.Outputs())
	cfg.SampleRate = uint32(samplerate)

	r := newRunner(t, rec)
	recv := func(out, in []byte, framecount uint32) {
		if framecount == 0 {
			return
		}
		if t.Inputs() == 0 {
			in = nil
		}
		r.interleave(out[:4*int(framecount)*t.Outputs()], in)
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: recv,
	})
	if err != nil {
		return fmt.Errorf("initialising device: %w", err)
	}
	if err := device.Start(); err != nil {
		return fmt.Errorf("starting device: %w", err)
	}

	<-ctx.Done()

	device.Uninit()
	return r.err
}

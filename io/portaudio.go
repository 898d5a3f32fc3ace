package io

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/pfcm/cymaglyph"
)

// PlayPortAudio runs the Ticker, which must have no inputs, on the default
// output through PortAudio. It blocks until the context is cancelled. If rec
// is not nil the output is also written to it.
func PlayPortAudio(ctx context.Context, t cymaglyph.Ticker, samplerate int, rec *Recorder) error {
	if t.Inputs() != 0 {
		return fmt.Errorf("portaudio can only play Tickers without inputs, %v has %d", t, t.Inputs())
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialising portaudio: %w", err)
	}
	defer portaudio.Terminate()

	r := newRunner(t, rec)
	stream, err := portaudio.OpenDefaultStream(0, t.Outputs(), float64(samplerate), 0, func(out [][]float32) {
		for off := 0; off < len(out[0]); off += cymaglyph.MaxBlock {
			n := min(cymaglyph.MaxBlock, len(out[0])-off)
			for c, o := range r.tick(n) {
				copy(out[c][off:off+n], o)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}

	<-ctx.Done()

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("stopping stream: %w", err)
	}
	return r.err
}

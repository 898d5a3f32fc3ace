package io

import (
	"context"
	"fmt"

	"github.com/ebitengine/oto/v3"

	"github.com/pfcm/cymaglyph"
)

// reader adapts a Ticker with no inputs into the stream of interleaved
// float32 samples that oto pulls from.
type reader struct {
	r      *runner
	frame  int
}

func (rd *reader) Read(p []byte) (int, error) {
	n := len(p) / rd.frame * rd.frame
	rd.r.interleave(p[:n], nil)
	return n, nil
}

// PlayOto runs the Ticker, which must have no inputs, on the default output
// through oto. It blocks until the context is cancelled. If rec is not nil the
// output is also written to it.
func PlayOto(ctx context.Context, t cymaglyph.Ticker, samplerate int, rec *Recorder) error {
	if t.Inputs() != 0 {
		return fmt.Errorf("oto can only play Tickers without inputs, %v has %d", t, t.Inputs())
	}
	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   samplerate,
		ChannelCount: t.Outputs(),
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("creating oto context: %w", err)
	}
	<-ready

	rd := &reader{r: newRunner(t, rec), frame: 4 * t.Outputs()}
	player := octx.NewPlayer(rd)
	player.Play()

	<-ctx.Done()

	if err := player.Close(); err != nil {
		return fmt.Errorf("closing player: %w", err)
	}
	return rd.r.err
}

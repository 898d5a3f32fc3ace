package io

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pfcm/cymaglyph"
)

const bitDepth = 16

// Recorder writes blocks of audio to a 16 bit PCM wav file.
type Recorder struct {
	f   *os.File
	enc *wav.Encoder
	buf *audio.IntBuffer
}

// Create makes a new wav file, truncating any existing one.
func Create(filename string, channels, samplerate int) (*Recorder, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		f:   f,
		enc: wav.NewEncoder(f, samplerate, bitDepth, channels, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: samplerate},
			Data:           make([]int, 0, channels*cymaglyph.MaxBlock),
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends a block of audio, one slice per channel, clipping anything
// outside [-1, 1].
func (r *Recorder) Write(block [][]float32) error {
	data := r.buf.Data[:0]
	for i := range block[0] {
		for _, c := range block {
			data = append(data, pcm(c[i]))
		}
	}
	r.buf.Data = data
	return r.enc.Write(r.buf)
}

func pcm(x float32) int {
	const full = 1<<(bitDepth-1) - 1
	x = min(max(x, -1), 1) * full
	if x < 0 {
		return int(x - 0.5)
	}
	return int(x + 0.5)
}

// Close finishes the wav header and closes the file.
func (r *Recorder) Close() error {
	return errors.Join(r.enc.Close(), r.f.Close())
}

// Render runs a Ticker with no inputs for the given number of frames as fast
// as possible, writing the result to a wav file.
func Render(t cymaglyph.Ticker, frames, samplerate int, filename string) error {
	if t.Inputs() != 0 {
		return fmt.Errorf("can only render Tickers without inputs, %v has %d", t, t.Inputs())
	}
	rec, err := Create(filename, t.Outputs(), samplerate)
	if err != nil {
		return err
	}
	r := newRunner(t, rec)
	for off := 0; off < frames && r.err == nil; off += cymaglyph.MaxBlock {
		r.tick(min(cymaglyph.MaxBlock, frames-off))
	}
	return errors.Join(r.err, rec.Close())
}

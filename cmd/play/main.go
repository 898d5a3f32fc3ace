// command play plays one of the engine's modes, either as a drone at a fixed
// pitch or polyphonically from MIDI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	gm "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/delay"
	"github.com/pfcm/cymaglyph/engine"
	"github.com/pfcm/cymaglyph/filter"
	"github.com/pfcm/cymaglyph/fx"
	"github.com/pfcm/cymaglyph/hid"
	"github.com/pfcm/cymaglyph/io"
	"github.com/pfcm/cymaglyph/midi"
	"github.com/pfcm/cymaglyph/midi/gomidi"
	"github.com/pfcm/cymaglyph/osc"
	"github.com/pfcm/cymaglyph/voice"
	"github.com/pfcm/cymaglyph/wg"
)

var (
	modeFlag     = flag.String("mode", "Crystalline", "`name or number` of the mode to play, one of: "+strings.Join(engine.ModeNames(), ", "))
	freqFlag     = flag.Float64("freq", 220, "frequency in Hz of the drone, ignored with -midi")
	velocityFlag = flag.Float64("velocity", 0.8, "velocity of the drone in [0, 1]")
	rateFlag     = flag.Int("rate", 44100, "sample rate in Hz")
	backendFlag  = flag.String("backend", "malgo", "audio backend: malgo, oto, portaudio, or render to only write the wav file")
	writeFlag    = flag.Bool("write", false, "if true, writes the output to a wav file in the current directory")
	midiFlag     = flag.Bool("midi", false, "play notes from midi input instead of a drone")
	portFlag     = flag.String("port", "", "midi input port `name`, empty for every port")
	voicesFlag   = flag.Int("voices", 4, "number of voices when playing from midi")
	a4Flag       = flag.Float64("a4", voice.DefaultA4, "tuning reference in Hz")
	sweepFlag    = flag.Bool("sweep", false, "whether to sweep the pitch")
	sweepRate    = flag.Float64("sweep-rate", 0.5, "rate of the pitch sweep in Hz")
	sweepCents   = flag.Float64("sweep-cents", 50, "depth of the pitch sweep in cents either way")
	profileFlag  = flag.Bool("profile", false, "whether to write pprof profiles to the current working directory")
	demoFlag     = flag.String("demo", "", "play a bare building block at -freq instead of a mode: pluck or wavetable")
	everyFlag    = flag.Duration("every", 500*time.Millisecond, "time between plucks with -demo=pluck")
	durationFlag = flag.Duration("duration", 0, "how long to play for, 0 means until interrupted. Required with -backend=render")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("play: ")

	mode, err := engine.ParseMode(*modeFlag)
	if err != nil {
		log.Fatal(err)
	}

	if *profileFlag {
		finish, err := startProfiles()
		if err != nil {
			log.Fatalf("Starting profiling: %v", err)
		}
		defer func() {
			if err := finish(); err != nil {
				log.Fatalf("Finishing profiles: %v", err)
			}
		}()
	}

	ctx := interruptContext()
	if *durationFlag > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *durationFlag)
		defer cancel()
	}
	g, ctx := errgroup.WithContext(ctx)

	var (
		t      cymaglyph.Ticker
		voices []*voice.Voice
	)
	if *midiFlag {
		defer gm.CloseDriver()
		l := gomidi.All()
		if *portFlag != "" {
			l = gomidi.Port(*portFlag)
		}
		d := midi.Listen(ctx, l)
		g.Go(func() error {
			if err := d.Wait(); !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		})
		t, voices = midikeys(d, *voicesFlag, mode)
	} else if *demoFlag != "" {
		t, err = demo(*demoFlag, float32(*freqFlag), float32(*velocityFlag), float32(*rateFlag))
		if err != nil {
			log.Fatal(err)
		}
	} else {
		v := voice.NewStereo(float32(*rateFlag))
		note := voice.FrequencyToNote(float32(*freqFlag), float32(*a4Flag))
		t = cymaglyph.Serially(
			cymaglyph.Concurrently(
				cymaglyph.Const{Val: note},
				cymaglyph.Const{Val: float32(*velocityFlag)},
			),
			v,
		)
		voices = append(voices, v)
	}
	for _, v := range voices {
		v.SetMode(mode)
		v.SetA4(float32(*a4Flag))
		if *sweepFlag {
			v.SetSweep(float32(*sweepRate), float32(*sweepCents))
		}
	}
	if *demoFlag != "" {
		log.Printf("playing %v", t)
	} else {
		log.Printf("playing %v: %s", mode, engine.ModeInfo(int(mode)).Description)
	}

	var filename string
	if *writeFlag || *backendFlag == "render" {
		filename = fmt.Sprintf("out-%d.wav", time.Now().Unix())
		log.Printf("Writing output to %q", filename)
	}
	var rec *io.Recorder
	if filename != "" && *backendFlag != "render" {
		rec, err = io.Create(filename, t.Outputs(), *rateFlag)
		if err != nil {
			log.Fatal(err)
		}
	}

	c := newCopier(t.Outputs())
	ch := cymaglyph.Serially(t, c)

	g.Go(func() error {
		switch *backendFlag {
		case "malgo":
			return io.PlayWithDefaults(ctx, ch, *rateFlag, rec)
		case "oto":
			return io.PlayOto(ctx, ch, *rateFlag, rec)
		case "portaudio":
			return io.PlayPortAudio(ctx, ch, *rateFlag, rec)
		case "render":
			if *durationFlag <= 0 {
				return fmt.Errorf("-backend=render needs a -duration")
			}
			frames := int(durationFlag.Seconds() * float64(*rateFlag))
			return io.Render(ch, frames, *rateFlag, filename)
		}
		return fmt.Errorf("unknown backend %q", *backendFlag)
	})
	if *backendFlag != "render" {
		g.Go(func() error {
			t0 := time.Now()
			t := time.NewTicker(100 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					fmt.Println()
					return nil
				case <-t.C:
					var s []string
					for _, f := range c.getRMS() {
						s = append(s, fmt.Sprintf("%.2f", f))
					}
					fmt.Printf("\r%.4f: %v", time.Since(t0).Seconds(), s)
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Fatal(err)
		}
	}
}

// midikeys plays n voices from the notes in d, mixed down and spread out to
// stereo.
func midikeys(d *midi.Dispatcher, n int, m engine.Mode) (cymaglyph.Ticker, []*voice.Voice) {
	sr := float32(*rateFlag)
	voices := make([]*voice.Voice, n)
	ts := make([]cymaglyph.Ticker, n)
	for i := range voices {
		voices[i] = voice.New(sr)
		ts[i] = voices[i]
	}
	dim := fx.NewDimension(1, 0.4, engine.ModeInfo(int(m)).Width, sr)
	return cymaglyph.Serially(
		hid.NewMidiNotes(d, n),
		cymaglyph.Concurrently(ts...),
		cymaglyph.Sum(n),
		dim,
	), voices
}

// demo returns one of the building blocks on its own, outside of any mode.
func demo(name string, freq, vel, sr float32) (cymaglyph.Ticker, error) {
	switch name {
	case "pluck":
		return cymaglyph.Serially(
			cymaglyph.Concurrently(
				cymaglyph.Every(vel, *everyFlag, sr),
				cymaglyph.Const{Val: freq},
			),
			wg.NewKS(sr),
			cymaglyph.Process(delay.NewChorus(0.5, 15*time.Millisecond, 4*time.Millisecond, 0.4, sr)),
		), nil
	case "wavetable":
		wt := osc.NewWavetable(sr)
		wt.SetMorph(freq / 100)
		return cymaglyph.Serially(
			cymaglyph.Const{Val: freq},
			wt,
			cymaglyph.Process(filter.NewSVF(filter.Lowpass, freq*4, 0.7, sr)),
			cymaglyph.Scale{Mul: vel * 0.5},
		), nil
	}
	return nil, fmt.Errorf("unknown demo %q, want pluck or wavetable", name)
}

type copier struct {
	channels int

	mu  sync.Mutex
	rms []float32
}

func newCopier(channels int) *copier {
	return &copier{
		channels: channels,
		rms:      make([]float32, channels),
	}
}

func (c *copier) Inputs() int    { return c.channels }
func (c *copier) Outputs() int   { return c.channels }
func (c *copier) String() string { return fmt.Sprintf("copier(%d)", c.channels) }

func (c *copier) Tick(in, out [][]float32) {
	for i, inp := range in {
		copy(out[i], inp)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, channel := range in {
		rms := float64(0)
		for _, s := range channel {
			rms += float64(s) * float64(s)
		}
		rms /= float64(len(channel))
		c.rms[i] = 0.01*c.rms[i] + 0.99*float32(math.Sqrt(rms))
	}
}

func (c *copier) getRMS() []float32 {
	results := make([]float32, c.channels)
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(results, c.rms)
	return results
}

func interruptContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}

func startProfiles() (func() error, error) {
	cpu, err := os.Create("cpu.pprof")
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(cpu); err != nil {
		return nil, fmt.Errorf("starting cpu profile: %w", err)
	}

	mem, err := os.Create("mem.pprof")
	if err != nil {
		return nil, err
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := cpu.Close(); err != nil {
			return err
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(mem); err != nil {
			return err
		}
		return mem.Close()
	}, nil
}

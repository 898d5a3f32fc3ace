// show-modes lists the engine's modes, with their palettes and how loud each
// one is at a given pitch.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph/engine"
)

var (
	modesFlag = flag.String("modes", "", "comma separated list of mode `names or numbers` to show. Leave empty to show all modes")
	freqFlag  = flag.Float64("freq", 220, "frequency in Hz to measure the levels at")
	levelFlag = flag.Bool("levels", true, "whether to render a second of each mode and show its levels")
)

const samplerate = 44100

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), help)
		fmt.Fprintln(flag.CommandLine.Output(), "\nOptional arguments:")
		flag.PrintDefaults()
	}
	flag.Parse()

	modes, err := parseModes(*modesFlag)
	if err != nil {
		fail(err.Error())
	}

	w := tabwriter.NewWriter(os.Stdout, 4, 1, 2, ' ', 0)
	fmt.Fprint(w, "#\tname\tdescription\twidth\t")
	if *levelFlag {
		fmt.Fprint(w, "rms\tpeak\t")
	}
	fmt.Fprintln(w, "palette")
	e := engine.New(samplerate)
	for _, m := range modes {
		showMode(w, e, m)
	}
	if err := w.Flush(); err != nil {
		fail(err.Error())
	}
}

func parseModes(s string) ([]engine.Mode, error) {
	if s == "" {
		modes := make([]engine.Mode, engine.NumModes)
		for i := range modes {
			modes[i] = engine.Mode(i)
		}
		return modes, nil
	}
	var modes []engine.Mode
	for _, name := range strings.Split(s, ",") {
		m, err := engine.ParseMode(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

func showMode(w io.Writer, e *engine.Engine, m engine.Mode) {
	info := engine.ModeInfo(int(m))
	fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t", m, info.Name, info.Description, info.Width)
	if *levelFlag {
		rms, peak := levels(e, m, float32(*freqFlag))
		fmt.Fprintf(w, "%.3f\t%.3f\t", rms, peak)
	}
	fmt.Fprintln(w, swatch(info.Primary)+swatch(info.Secondary)+swatch(info.Accent))
}

// levels plays a second of m from a fresh start.
func levels(e *engine.Engine, m engine.Mode, freq float32) (rms, peak float32) {
	e.Reset()
	var phase float32
	for i := 0; i < samplerate; i++ {
		x := e.GenerateSample(phase, freq, m)
		rms += x * x
		peak = max(peak, math32.Abs(x))
		if phase += freq / samplerate; phase >= 1 {
			phase--
		}
	}
	return math32.Sqrt(rms / samplerate), peak
}

func swatch(c color.RGBA) string {
	hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
}

func fail(reason string) {
	fmt.Fprintln(os.Stderr, reason)
	fmt.Fprint(os.Stderr, help, "\n")
	os.Exit(1)
}

const help = `show-modes lists the synthesis modes with their descriptions,
stereo width, levels and colour palette.
Usage:
	show-modes [-modes] [-freq] [-levels]
`

package engine

import (
	"fmt"
	"image/color"
)

// Mode selects one of the engine's synthesis algorithms.
type Mode int

const (
	Crystalline Mode = iota
	AnalogBeast
	Resonator
	Morpheus
	Vox
	Texture
	Spectral
	DX7
	Living
	Nebula

	NumModes = iota
)

func (m Mode) String() string {
	if m < 0 || m >= NumModes {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modes[m].Name
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool { return m >= 0 && m < NumModes }

// Info describes a mode for display. None of it affects the sound except
// Width, the stereo spread GenerateStereo uses.
type Info struct {
	Name        string
	Description string

	Primary, Secondary, Accent color.RGBA

	Width float32
}

type patch func(e *Engine, phase, freq float32) float32

type mode struct {
	Info
	generate patch
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{r, g, b, 0xff} }

// modes is the registry of everything the engine can play, indexed by Mode.
var modes = [NumModes]mode{
	Crystalline: {Info{
		Name: "Crystalline", Description: "Glass harmonics",
		Primary: rgb(255, 105, 180), Secondary: rgb(135, 206, 250), Accent: rgb(255, 182, 193),
		Width: 0.8,
	}, (*Engine).crystalline},
	AnalogBeast: {Info{
		Name: "Analog Beast", Description: "Vintage warmth",
		Primary: rgb(255, 140, 0), Secondary: rgb(255, 215, 0), Accent: rgb(255, 69, 0),
		Width: 0.4,
	}, (*Engine).analogBeast},
	Resonator: {Info{
		Name: "Resonator", Description: "Physical strings",
		Primary: rgb(0, 255, 255), Secondary: rgb(240, 248, 255), Accent: rgb(175, 238, 238),
		Width: 0.3,
	}, (*Engine).resonator},
	Morpheus: {Info{
		Name: "Morpheus", Description: "Evolving textures",
		Primary: rgb(128, 0, 128), Secondary: rgb(255, 215, 0), Accent: rgb(238, 130, 238),
		Width: 0.9,
	}, (*Engine).morpheus},
	Vox: {Info{
		Name: "Vox", Description: "Human vocals",
		Primary: rgb(0, 255, 0), Secondary: rgb(0, 128, 128), Accent: rgb(0, 255, 127),
		Width: 0.2,
	}, (*Engine).vox},
	Texture: {Info{
		Name: "Texture", Description: "Grain clouds",
		Primary: rgb(255, 0, 0), Secondary: rgb(255, 140, 0), Accent: rgb(255, 69, 0),
		Width: 1,
	}, (*Engine).texture},
	Spectral: {Info{
		Name: "Spectral", Description: "Harmonic organ",
		Primary: rgb(255, 0, 0), Secondary: rgb(0, 255, 0), Accent: rgb(0, 0, 255),
		Width: 0.6,
	}, (*Engine).spectral},
	DX7: {Info{
		Name: "DX7", Description: "FM synthesis",
		Primary: rgb(192, 192, 192), Secondary: rgb(0, 191, 255), Accent: rgb(224, 224, 224),
		Width: 0.5,
	}, (*Engine).dx7},
	Living: {Info{
		Name: "Living", Description: "Chaos generator",
		Primary: rgb(139, 69, 19), Secondary: rgb(34, 139, 34), Accent: rgb(107, 142, 35),
		Width: 0.7,
	}, (*Engine).living},
	Nebula: {Info{
		Name: "Nebula", Description: "Space atmosphere",
		Primary: rgb(255, 0, 255), Secondary: rgb(138, 43, 226), Accent: rgb(255, 105, 180),
		Width: 1,
	}, (*Engine).nebula},
}

// ModeInfo returns the description of mode i, or of the first mode if i is
// out of range.
func ModeInfo(i int) Info {
	if !Mode(i).Valid() {
		i = 0
	}
	return modes[i].Info
}

// ModeNames returns the name of every mode in order.
func ModeNames() []string {
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.Name
	}
	return names
}

// ParseMode looks a mode up by name or by number.
func ParseMode(s string) (Mode, error) {
	for i, m := range modes {
		if m.Name == s {
			return Mode(i), nil
		}
	}
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err == nil && Mode(i).Valid() {
		return Mode(i), nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

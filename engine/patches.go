package engine

import (
	"github.com/chewxy/math32"

	"github.com/pfcm/cymaglyph"
	"github.com/pfcm/cymaglyph/filter"
	"github.com/pfcm/cymaglyph/fx"
	"github.com/pfcm/cymaglyph/grain"
	"github.com/pfcm/cymaglyph/interp"
	"github.com/pfcm/cymaglyph/osc"
)

// Bell-like partials above the wavetable, as multiples of the fundamental.
var crystalPartials = [...]struct{ ratio, amp float32 }{
	{2.76, 0.15},
	{5.4, 0.1},
	{8.93, 0.05},
}

func (e *Engine) nyquist() float32 { return filter.Nyquist * e.samplerate }

func (e *Engine) crystalline(phase, freq float32) float32 {
	out := e.wavetable.Generate(phase)
	for i, p := range crystalPartials {
		ratio := 1 + (p.ratio-1)*e.spread
		ph := e.partials[i].Next(ratio*freq, e.samplerate)
		if ratio*freq >= e.nyquist() {
			continue
		}
		out += osc.Sine(ph) * p.amp
	}
	// comb shimmer
	out = out*0.7 + e.lines[0].Process(out*0.3)
	out *= 1 + osc.Sine(13*phase)*0.1
	return cymaglyph.SoftClip(out * 0.5)
}

func (e *Engine) analogBeast(phase, freq float32) float32 {
	e.drift = (e.drift + e.noise.Next()*0.0001) * 0.999

	saw1 := osc.Saw(phase)
	saw2 := osc.Saw(e.detune[0].Next(freq*0.997, e.samplerate))
	saw3 := osc.Saw(e.detune[1].Next(freq*1.003, e.samplerate))
	sub := osc.Sine(e.sub.Next(freq*0.5, e.samplerate))
	out := (saw1+saw2*0.7+saw3*0.7)*0.3 + sub*0.4

	cutoff := (2000 + freq*2) * e.tone() * (0.5 + 0.5*e.velocity)
	e.ladder.SetParams(cutoff, 2*e.resonance, e.samplerate)
	out = e.ladder.Process(out)

	return math32.Tanh(out*1.5+e.drift) * 0.6
}

func (e *Engine) resonator(phase, freq float32) float32 {
	e.ks.SetFrequency(freq)
	if phase < 0.01 && !e.plucked {
		// one period of noise, once per note
		e.plucked = true
		e.burst.SetTimes(0, e.ks.Len())
		e.burst.Trigger()
	}
	var excitation float32
	if e.burst.Active() {
		excitation = e.noise.Next() * 0.5 * (0.3 + 0.7*e.velocity) * e.burst.Next()
	}
	str := e.ks.Process(excitation)
	sympathetic := e.lines[2].Process(str * 0.2)

	out := str + sympathetic*0.3
	out += osc.Sine(2*phase) * 0.1
	return cymaglyph.SoftClip(out * 0.7)
}

func (e *Engine) morpheus(phase, freq float32) float32 {
	noise := e.noise.Next() * 0.3
	top := interp.L(osc.Sine(phase), osc.Saw(phase), e.morphX)
	bottom := interp.L(osc.Square(phase), noise, e.morphX)
	out := interp.L(top, bottom, e.morphY)

	f := &e.filters[1]
	f.SetParams(freq*3, 5*e.resonance, e.samplerate)
	f.Step(out)
	out = f.Band()

	out *= 1 + e.lfos[morpheusLFO].Next()*0.2
	out = e.phaser.Process(out)
	out = e.chorus[1].Process(out)
	return out * 0.5
}

// Formant centre frequencies in Hz for the vowels A, E, I, O and U.
var formants = [5][5]float32{
	{800, 1150, 2900, 3900, 4950},
	{350, 2000, 2800, 3600, 4950},
	{270, 2140, 2950, 3900, 4950},
	{450, 800, 2830, 3800, 4950},
	{325, 700, 2700, 3800, 4950},
}

func (e *Engine) vox(phase, freq float32) float32 {
	glottal := osc.Sine(phase)
	glottal = glottal * glottal * glottal

	vowel := int(freq/100) % len(formants)
	var out float32
	for i := range e.filters {
		f := &e.filters[i]
		f.SetParams(formants[vowel][i], 10+5*float32(i), e.samplerate)
		f.Step(glottal)
		out += f.Band() / float32(i+1)
	}

	breath := e.noise.Next() * 0.05
	out = out*0.9 + breath*0.1
	out *= 1 + e.lfos[vibrato].Next()*0.02
	return cymaglyph.SoftClip(out * 0.4)
}

func (e *Engine) texture(phase, freq float32) float32 {
	e.grainClock.SetRate(freq*0.1, e.samplerate)
	if e.grainClock.Next() {
		e.grains.Trigger()
	}
	e.grains.SetRate(freq / grain.SourceCycles)
	out := e.grainsStereo(e.grains, 0.35)

	f := &e.filters[3]
	f.SetParams(freq*4, 3, e.samplerate)
	f.Step(e.noise.Next() * 0.1)
	out = out*0.7 + f.Band()*0.3

	delayed := e.lines[3].Process(out * 0.4)
	return cymaglyph.SoftClip((out + delayed) * 0.5)
}

const numHarmonics = 32

func (e *Engine) spectral(phase, freq float32) float32 {
	var (
		out    float32
		cutoff = 20 - freq/100
		warp   = fx.Warp{Amount: e.spread}
	)
	for i := range e.harmonics {
		h := float32(i + 1)
		amp := 1 / h
		// formant-like peaks
		if (i+1)%3 == 0 {
			amp *= 2
		}
		if (i+1)%7 == 0 {
			amp *= 1.5
		}
		if h > cutoff {
			amp *= math32.Exp(-(h - cutoff) * 0.2)
		}
		ratio := warp.Ratio(h, phase)
		ph := e.harmonics[i].Next(ratio*freq, e.samplerate)
		if ratio*freq >= e.nyquist() {
			continue
		}
		out += osc.Sine(ph) * amp
	}
	out *= 0.1
	out *= 1 + e.lfos[shift].Next()*0.1
	return cymaglyph.SoftClip(out * 0.6)
}

var fmRatios = [6]float32{1, 1.5, 2, 3, 4, 7}

// dx7 is two three operator stacks, 6 into 5 into 4 and 3 into 2 into 1,
// with both carriers mixed.
func (e *Engine) dx7(phase, freq float32) float32 {
	for i := range e.ops {
		e.ops[i].Advance(freq, e.samplerate)
	}
	index := 0.25 + 0.75*e.velocity

	mod6 := e.ops[5].Generate(0) * 2 * index
	mod5 := e.ops[4].Generate(mod6) * 1.5 * index
	carrier1 := e.ops[3].Generate(mod5)

	mod3 := e.ops[2].Generate(0) * 3 * index
	mod2 := e.ops[1].Generate(mod3) * 2 * index
	carrier2 := e.ops[0].Generate(mod2)

	out := (carrier1 + carrier2) * 0.5
	out += osc.Sine(e.shimmer.Next(freq*7.13, e.samplerate)) * 0.05

	bright := interp.Clamp(freq/1000, 0, 1)
	out = out*(1-bright*0.3) + math32.Tanh(out*3)*bright*0.3
	return out * 0.5
}

// Lorenz system parameters.
const (
	lorenzDt    = 0.01
	lorenzSigma = 10
	lorenzRho   = 28
	lorenzBeta  = 8.0 / 3
)

func (e *Engine) living(phase, freq float32) float32 {
	x, y, z := e.chaos[0], e.chaos[1], e.chaos[2]
	dx := lorenzSigma * (y - x)
	dy := x*(lorenzRho-z) - y
	dz := x*y - lorenzBeta*z
	// squashed to keep the attractor bounded at audio rate
	x = math32.Tanh((x + dx*lorenzDt) * 0.1)
	y = math32.Tanh((y + dy*lorenzDt) * 0.1)
	z = math32.Tanh((z + dz*lorenzDt) * 0.1)
	e.chaos = [3]float32{x, y, z}

	out := osc.Sine(phase) * (1 + x*0.5)
	out += y * 0.2
	out += osc.Sine(e.wobble.Next(freq*(2+z), e.samplerate)) * 0.3
	out *= 1 + e.lfos[breath].Next()*0.3

	f := &e.filters[4]
	f.SetParams(max((500+x*2000)*e.tone(), 20), 1+math32.Abs(y)*5*e.resonance, e.samplerate)
	f.Step(out)
	out = f.Low()

	out = interp.L(out, e.crusher.Process(out), 0.2)
	return cymaglyph.SoftClip(out * 0.5)
}

func (e *Engine) nebula(phase, freq float32) float32 {
	wt := e.wavetable.Generate(phase) * 0.3

	if e.cloudClock.Next() {
		e.cloud.Trigger()
	}
	e.cloud.SetRate(freq / grain.SourceCycles)
	grains := e.grainsStereo(e.cloud, 0.042) * 0.2

	e.ops[0].Advance(freq, e.samplerate)
	fmMod := e.ops[0].Generate(0) * 5
	fm := osc.Sine(phase*(1+fmMod)) * 0.2

	f := &e.filters[2]
	f.SetParams(freq*8, 4, e.samplerate)
	f.Step(e.noise.Next() * 0.1)

	mix := interp.Clamp(freq/1000, 0, 1)
	out := wt*(1-mix*0.5) + grains*0.5 + fm*mix + f.Band()*0.3

	out = out*0.7 + e.reverb.Process(out*0.2)*0.3
	out *= 1 + e.lfos[nebulaSlow].Next()*0.1 + e.lfos[nebulaFast].Next()*0.05
	out = e.chorus[0].Process(out)
	return cymaglyph.SoftClip(out * 0.6)
}

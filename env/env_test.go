package env

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestADSR(t *testing.T) {
	// At 1kHz a millisecond is a sample.
	a := NewADSR(4*time.Millisecond, 2*time.Millisecond, 0.5, 4*time.Millisecond, 1000)
	var (
		levels []float32
		states []State
	)
	step := func(n int) {
		for i := 0; i < n; i++ {
			levels = append(levels, a.Next())
			states = append(states, a.State())
		}
	}
	step(1)
	a.Gate(true)
	step(8)
	a.Gate(false)
	step(5)

	want := []float32{
		0,                  // off
		0.25, 0.5, 0.75, 1, // attack
		0.75, 0.5, // decay
		0.5, 0.5, // sustain
		0.375, 0.25, 0.125, 0, // release
		0,
	}
	if diff := cmp.Diff(want, levels, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("levels (-want +got):\n%s", diff)
	}
	wantStates := []State{
		Off,
		Attack, Attack, Attack, Decay,
		Decay, Sustain,
		Sustain, Sustain,
		Release, Release, Release, Off,
		Off,
	}
	if diff := cmp.Diff(wantStates, states); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
}

func TestADSRReleaseDuringAttack(t *testing.T) {
	a := NewADSR(10*time.Millisecond, 0, 1, 2*time.Millisecond, 1000)
	a.Gate(true)
	for i := 0; i < 4; i++ {
		a.Next()
	}
	a.Gate(false)
	if got, want := a.Next(), float32(0.2); !cmp.Equal(got, want, cmpopts.EquateApprox(0, 1e-6)) {
		t.Errorf("first release sample = %v, want: %v", got, want)
	}
	if got := a.Next(); got != 0 || a.State() != Off {
		t.Errorf("after release got %v in state %v, want 0 in state x", got, a.State())
	}
}

func TestADSRRetrigger(t *testing.T) {
	for _, c := range []struct {
		name  string
		setup func(*ADSR)
		want  []float32
	}{{
		name: "sustain",
		setup: func(a *ADSR) {
			a.Retrigger()
		},
		want: []float32{0.625, 0.75, 0.875, 1, 0.75, 0.5},
	}, {
		name: "release",
		setup: func(a *ADSR) {
			a.Gate(false)
			a.Next()
			a.Gate(true)
		},
		want: []float32{0.53125, 0.6875, 0.84375, 1, 0.75, 0.5},
	}, {
		name: "open gate",
		setup: func(a *ADSR) {
			a.Gate(true)
		},
		want: []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
	}} {
		t.Run(c.name, func(t *testing.T) {
			a := NewADSR(4*time.Millisecond, 2*time.Millisecond, 0.5, 4*time.Millisecond, 1000)
			a.Gate(true)
			for _i := 0; _i < 8; _i++ {
				a.Next()
			}
			c.setup(a)
			var got []float32
			for _i := 0; _i < len(c.want); _i++ {
				got = append(got, a.Next())
			}
			if diff := cmp.Diff(c.want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
				t.Errorf("levels (-want +got):\n%s", diff)
			}
		})
	}
}

func TestADSRZeroTimes(t *testing.T) {
	a := NewADSR(0, 0, 0.3, 0, 44100)
	a.Gate(true)
	if got := a.Next(); got != 1 {
		t.Errorf("instant attack = %v, want: 1", got)
	}
	if got := a.Next(); !cmp.Equal(got, float32(0.3), cmpopts.EquateApprox(0, 1e-6)) {
		t.Errorf("instant decay = %v, want: 0.3", got)
	}
	a.Gate(false)
	if got := a.Next(); got != 0 {
		t.Errorf("instant release = %v, want: 0", got)
	}
}

func TestADSRTick(t *testing.T) {
	a := NewADSR(2*time.Millisecond, 0, 1, 2*time.Millisecond, 1000)
	in := [][]float32{{0, 1, 1, 1, 0, 0, 0}}
	out := [][]float32{make([]float32, 7)}
	a.Tick(in, out)
	want := []float32{0, 0.5, 1, 1, 0.5, 0, 0}
	if diff := cmp.Diff(want, out[0]); diff != "" {
		t.Errorf("Tick (-want +got):\n%s", diff)
	}
}

func TestAD(t *testing.T) {
	a := AttackDecay(2*time.Millisecond, 4*time.Millisecond, 1000)
	var got []float32
	for i := 0; i < 2; i++ {
		got = append(got, a.Next())
	}
	a.Trigger()
	for a.Active() {
		got = append(got, a.Next())
	}
	want := []float32{0, 0, 0.5, 1, 1, 0.75, 0.5, 0.25}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AD (-want +got):\n%s", diff)
	}
}

package repeat

import (
	"math"
	"testing"
)

const dt = 1e-3

func jack(high bool) Input {
	if high {
		return Input{Voltage: 10, Connected: true}
	}
	return Input{Voltage: 0, Connected: true}
}

// step runs a rising edge then a falling edge and returns the output of the edge sample
func step(r *Repeater, clock, pulse, reset bool) Outputs {
	out := r.Process(Inputs{Clock: jack(clock), Pulse: jack(pulse), Reset: jack(reset)}, dt)
	r.Process(Inputs{Clock: jack(false), Pulse: jack(false), Reset: jack(false)}, dt)
	return out
}

func TestSchmittTriggerHysteresis(t *testing.T) {
	var tr SchmittTrigger
	tests := []struct {
		v    float64
		want bool
	}{
		{0.5, false},
		{1.0, true},
		{0.5, false}, // still high, no retrigger
		{2.0, false},
		{0.1, false}, // re-arms
		{1.0, true},
	}
	for i, tt := range tests {
		if got := tr.Process(tt.v, TriggerLow, TriggerHigh); got != tt.want {
			t.Errorf("sample %d (%v): expected %v, got %v", i, tt.v, tt.want, got)
		}
	}
	if !tr.IsHigh() {
		t.Error("Expected trigger high after last edge")
	}
	tr.Reset()
	if tr.IsHigh() {
		t.Error("Expected trigger low after reset")
	}
}

func TestPulseGeneratorWidth(t *testing.T) {
	var g PulseGenerator
	g.Trigger(0.5)
	g.Trigger(0.2) // shorter trigger does not cut the pulse
	high := 0
	for i := 0; i < 10; i++ {
		if g.Process(0.1) {
			high++
		}
	}
	if high != 5 {
		t.Errorf("Expected 5 high samples, got %d", high)
	}
}

func TestPulseGeneratorWidthAtSampleRates(t *testing.T) {
	tests := []struct {
		duration, dt float64
		want         int
	}{
		{0.5, 0.125, 4},
		{0.3, 0.1, 3},
		{PulseDuration, 1.0 / 48000, 48},
		{PulseDuration, 1.0 / 44100, 45},
	}
	for _, tt := range tests {
		var g PulseGenerator
		g.Trigger(tt.duration)
		high := 0
		for i := 0; i < 2*tt.want+2; i++ {
			if g.Process(tt.dt) {
				high++
			}
		}
		if high != tt.want {
			t.Errorf("Trigger(%v) at dt %v: expected %d high samples, got %d", tt.duration, tt.dt, tt.want, high)
		}
	}
}

func TestRepeatTrain(t *testing.T) {
	r := New(Params{Period: 2, Repeat: 3, ResetPeriod: 1})

	if out := step(r, false, true, false); out.Pulse != 0 {
		t.Errorf("Expected no output on first input pulse, got %v", out.Pulse)
	}
	if r.InputCount() != 1 {
		t.Errorf("Expected input count 1, got %d", r.InputCount())
	}
	out := step(r, false, true, false)
	if out.Pulse != 0 {
		t.Errorf("Expected no output when period completes, got %v", out.Pulse)
	}
	if r.TrainCount() != 3 || out.TrainLight != 1 || out.InputLight != 0 {
		t.Errorf("Expected armed train of 3, got count %d lights %+v", r.TrainCount(), out)
	}

	for i := 0; i < 3; i++ {
		if out := step(r, true, false, false); out.Pulse != PulseVoltage {
			t.Errorf("clock %d: expected pulse %v, got %v", i, PulseVoltage, out.Pulse)
		}
	}
	if out := step(r, true, false, false); out.Pulse != 0 {
		t.Errorf("Expected train exhausted after 3 clocks, got %v", out.Pulse)
	}
}

func TestRepeatThrough(t *testing.T) {
	r := New(DefaultParams())
	for i := 0; i < 3; i++ {
		if out := step(r, false, true, false); out.Pulse != PulseVoltage {
			t.Errorf("pulse %d: expected through output, got %v", i, out.Pulse)
		}
	}
	if out := r.Process(Inputs{}, dt); out.Pulse != 0 {
		t.Errorf("Expected output low after pulse width, got %v", out.Pulse)
	}
	if got := r.Process(Inputs{}, dt).InputLight; math.Abs(got-3.0/8) > 1e-12 {
		t.Errorf("Expected input light 3/8, got %v", got)
	}
}

func TestRepeatZeroMutes(t *testing.T) {
	r := New(Params{Period: 1, Repeat: 0, ResetPeriod: 1, Through: true})
	if out := step(r, false, true, false); out.Pulse != 0 {
		t.Errorf("Expected muted output with repeat 0, got %v", out.Pulse)
	}
	if out := step(r, true, false, false); out.Pulse != 0 {
		t.Errorf("Expected no train with repeat 0, got %v", out.Pulse)
	}
}

func TestRepeatResetPeriod(t *testing.T) {
	r := New(Params{Period: 8, Repeat: 1, ResetPeriod: 2})
	step(r, false, true, false)
	step(r, false, true, false)
	step(r, false, false, true)
	if r.InputCount() != 2 {
		t.Errorf("Expected count kept after one reset, got %d", r.InputCount())
	}
	step(r, false, false, true)
	if r.InputCount() != 0 {
		t.Errorf("Expected count cleared after two resets, got %d", r.InputCount())
	}
}

func TestRepeatDisconnectedIgnored(t *testing.T) {
	r := New(DefaultParams())
	out := r.Process(Inputs{Pulse: Input{Voltage: 10}}, dt)
	if out.Pulse != 0 || r.InputCount() != 0 {
		t.Errorf("Expected unpatched jack ignored, got %+v count %d", out, r.InputCount())
	}
}

func TestRepeatLightsNeverNaN(t *testing.T) {
	r := New(Params{Period: 0, Repeat: 0, ResetPeriod: 0})
	for i := 0; i < 4; i++ {
		out := r.Process(Inputs{}, dt)
		if math.IsNaN(out.InputLight) || math.IsNaN(out.TrainLight) {
			t.Fatalf("Expected finite lights, got %+v", out)
		}
	}
}

func TestParamsClamped(t *testing.T) {
	r := New(Params{Period: 500, Repeat: -3, ResetPeriod: math.NaN()})
	p := r.Params()
	if p.Period != MaxCount || p.Repeat != 0 || p.ResetPeriod != 0 {
		t.Errorf("Expected clamped params, got %+v", p)
	}
}

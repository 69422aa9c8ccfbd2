// Package repeat implements a trigger counter that answers every Period input
// pulses with a train of Repeat output pulses, one per clock tick.
//
// A Repeat of zero mutes the output for that period. Reset inputs are
// themselves divided by ResetPeriod, so an end-of-cycle signal can restart the
// count every N cycles.
package repeat

import "math"

const (
	// MaxCount bounds the Period, Repeat and ResetPeriod parameters
	MaxCount = 64

	// Trigger thresholds in volts
	TriggerLow  = 0.1
	TriggerHigh = 1.0

	// PulseDuration is the output pulse width in seconds
	PulseDuration = 1e-3
	// PulseVoltage is the output level while a pulse is high
	PulseVoltage = 10.0
)

// Params are the knob values of a Repeater
type Params struct {
	Period      float64 // Input pulses per train
	Repeat      float64 // Output pulses per train; 0 mutes
	ResetPeriod float64 // Reset triggers needed to clear counters
	Through     bool    // Pass every input pulse straight to the output
}

// DefaultParams returns the panel defaults
func DefaultParams() Params {
	return Params{
		Period:      8,
		Repeat:      1,
		ResetPeriod: 1,
		Through:     true,
	}
}

// clamped keeps every count inside [0, MaxCount]
func (p Params) clamped() Params {
	p.Period = clampCount(p.Period)
	p.Repeat = clampCount(p.Repeat)
	p.ResetPeriod = clampCount(p.ResetPeriod)
	return p
}

// Input is one jack: its voltage and whether anything is patched into it
type Input struct {
	Voltage   float64
	Connected bool
}

// Inputs are the three input jacks sampled each tick
type Inputs struct {
	Clock Input
	Reset Input
	Pulse Input
}

// Outputs are the pulse jack and the two count lights
type Outputs struct {
	Pulse      float64
	InputLight float64 // Progress toward Period, [0, 1]
	TrainLight float64 // Pulses left in the train relative to Repeat, [0, 1]
}

// Repeater is the per-sample pulse repeat state machine
// Not safe for concurrent use
type Repeater struct {
	params Params

	inputCount      int
	pulseTrainCount int
	resetCount      int

	clock SchmittTrigger
	reset SchmittTrigger
	pulse SchmittTrigger
	gen   PulseGenerator
}

// New creates a Repeater with clamped params
func New(p Params) *Repeater {
	return &Repeater{params: p.clamped()}
}

// Params returns the active parameters
func (r *Repeater) Params() Params { return r.params }

// SetParams replaces the parameters; counters are kept
func (r *Repeater) SetParams(p Params) { r.params = p.clamped() }

// InputCount returns the pulses counted toward the current period
func (r *Repeater) InputCount() int { return r.inputCount }

// TrainCount returns the pulses left in the current train
func (r *Repeater) TrainCount() int { return r.pulseTrainCount }

// Reset clears all counters and pending pulses
func (r *Repeater) Reset() {
	r.inputCount = 0
	r.pulseTrainCount = 0
	r.resetCount = 0
	r.gen.Reset()
}

// Process advances one sample of sampleTime seconds
func (r *Repeater) Process(in Inputs, sampleTime float64) Outputs {
	p := r.params
	repeat := int(math.Round(p.Repeat))
	shouldPulse := false

	if in.Reset.Connected && r.reset.Process(in.Reset.Voltage, TriggerLow, TriggerHigh) {
		r.resetCount++
		if float64(r.resetCount) >= math.Round(p.ResetPeriod) {
			r.inputCount = 0
			r.pulseTrainCount = 0
			r.resetCount = 0
		}
	}

	if in.Clock.Connected && r.clock.Process(in.Clock.Voltage, TriggerLow, TriggerHigh) {
		if r.pulseTrainCount > 0 {
			shouldPulse = true
			r.pulseTrainCount--
		}
	}

	if in.Pulse.Connected && r.pulse.Process(in.Pulse.Voltage, TriggerLow, TriggerHigh) {
		r.inputCount++
		if p.Through {
			shouldPulse = true
		}
	}

	// Period reached: arm a new train
	if float64(r.inputCount) >= p.Period {
		r.pulseTrainCount = repeat
		r.inputCount = 0
		if repeat == 0 {
			shouldPulse = false
		}
	}

	if shouldPulse {
		r.gen.Trigger(PulseDuration)
	}

	out := Outputs{
		InputLight: ratio(float64(r.inputCount), p.Period),
		TrainLight: ratio(float64(r.pulseTrainCount), p.Repeat),
	}
	if r.gen.Process(sampleTime) {
		out.Pulse = PulseVoltage
	}
	return out
}

// ratio returns n/d clamped to [0, 1]; d is floored at 1 so empty counts never divide by zero
func ratio(n, d float64) float64 {
	if d < 1 {
		d = 1
	}
	return math.Max(0, math.Min(1, n/d))
}

func clampCount(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, MaxCount)
}

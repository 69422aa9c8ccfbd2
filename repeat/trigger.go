package repeat

// SchmittTrigger detects rising edges with hysteresis
// Zero value starts low
type SchmittTrigger struct {
	high bool
}

// Process returns true on the sample v crosses high while low
// The trigger re-arms once v falls to low or below
func (t *SchmittTrigger) Process(v, low, high float64) bool {
	if t.high {
		if v <= low {
			t.high = false
		}
		return false
	}
	if v >= high {
		t.high = true
		return true
	}
	return false
}

// IsHigh reports the current trigger state
func (t *SchmittTrigger) IsHigh() bool { return t.high }

// Reset returns the trigger to low
func (t *SchmittTrigger) Reset() { t.high = false }

// pulseEpsilon absorbs rounding left over when dt divides the duration
const pulseEpsilon = 1e-9

// PulseGenerator holds its output high for a fixed time after a trigger
type PulseGenerator struct {
	remaining float64
}

// Trigger starts or extends a pulse of duration seconds
func (p *PulseGenerator) Trigger(duration float64) {
	if duration > p.remaining {
		p.remaining = duration
	}
}

// Process advances by dt seconds and reports whether the pulse is high
func (p *PulseGenerator) Process(dt float64) bool {
	if p.remaining > pulseEpsilon {
		p.remaining -= dt
		return true
	}
	return false
}

// Reset cancels any pending pulse
func (p *PulseGenerator) Reset() { p.remaining = 0 }

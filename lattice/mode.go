package lattice

import "math"

// Mode selects how a cursor traverses the lattice
type Mode int

const (
	ModeVector Mode = iota // Straight line driven by the axis deltas
	ModeRing               // Fixed hexagonal ring of MaxRadius per edge
	ModeVortex             // Ring whose edge length grows every revolution
	modeCount
)

var modeNames = [modeCount]string{"VECTOR", "RING", "VORTEX"}

func (m Mode) String() string {
	if m < 0 || m >= modeCount {
		return "UNKNOWN"
	}
	return modeNames[m]
}

// walksRing reports whether the mode uses the edge-walking ring cursor
func (m Mode) walksRing() bool {
	return m == ModeRing || m == ModeVortex
}

// ModeFromValue maps a control value to a mode: 1 VECTOR, 2 RING, 3 VORTEX
// The value is rounded and clamped into the valid range; NaN selects VECTOR
func ModeFromValue(v float64) Mode {
	if math.IsNaN(v) {
		return ModeVector
	}
	r := math.Round(v)
	if r < 1 {
		r = 1
	}
	if r > float64(modeCount) {
		r = float64(modeCount)
	}
	return Mode(int(r) - 1)
}

// Value returns the control value selecting m
func (m Mode) Value() float64 {
	return float64(m + 1)
}

// Next cycles VECTOR → RING → VORTEX → VECTOR
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

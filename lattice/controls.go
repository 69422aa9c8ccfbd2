package lattice

import "github.com/thestrangeagency/HarmonicAnomalies/hex"

// Controls are the external values driving one Tick
// Normalized fields use [0, 1]; modes select 1 VECTOR, 2 RING, 3 VORTEX
type Controls struct {
	WriteDelta hex.Vec3 // Lattice units per tick
	ReadDelta  hex.Vec3

	Value float64 // Sample to write
	Blend float64 // New/old crossfade, clamped to [0, 1]

	WriteMode float64
	ReadMode  float64

	WriteMaxRadius float64 // Normalized ring edge length
	ReadMaxRadius  float64
	Crop           float64 // Normalized addressable radius

	RingRadius int // Read ring radius in cells; 0 reads a single cell
}

// DefaultControls returns an uncropped, full-blend, vector-mode control set
// with both cursors at rest. The zero Controls value crops to a single cell
func DefaultControls() Controls {
	return Controls{
		Blend:          1,
		WriteMode:      ModeVector.Value(),
		ReadMode:       ModeVector.Value(),
		WriteMaxRadius: 1,
		ReadMaxRadius:  1,
		Crop:           1,
	}
}

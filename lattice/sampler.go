package lattice

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/thestrangeagency/HarmonicAnomalies/hex"
)

// DefaultMaxRingRadius bounds the read ring radius
const DefaultMaxRingRadius = 64

// RingSampler averages the cells on a hexagonal ring around a center cell
// Offsets are regenerated only when the radius changes
type RingSampler struct {
	geom      hex.Geometry
	maxRadius int
	radius    int
	offsets   []int
	scratch   []float64
}

// NewRingSampler creates a sampler with radius 0 (no ring)
func NewRingSampler(g hex.Geometry, maxRadius int) *RingSampler {
	if maxRadius < 0 {
		maxRadius = 0
	}
	return &RingSampler{
		geom:      g,
		maxRadius: maxRadius,
		offsets:   make([]int, 0, hex.NumDirections*maxRadius),
		scratch:   make([]float64, 0, hex.NumDirections*maxRadius),
	}
}

// Radius returns the current ring radius
func (s *RingSampler) Radius() int { return s.radius }

// MaxRadius returns the radius bound
func (s *RingSampler) MaxRadius() int { return s.maxRadius }

// SetRadius clamps r into [0, MaxRadius] and rebuilds offsets on change
// Returns true if the offsets were regenerated
func (s *RingSampler) SetRadius(r int) bool {
	r = max(0, min(r, s.maxRadius))
	if r == s.radius {
		return false
	}
	s.radius = r
	s.offsets = s.geom.AppendRingOffsets(s.offsets[:0], r)
	return true
}

// Offsets returns the live offset slice; callers must not retain it
func (s *RingSampler) Offsets() []int { return s.offsets }

// Cells resolves the ring around center into cell indices wrapped to length
func (s *RingSampler) Cells(dst []int, center, length int) []int {
	for _, off := range s.offsets {
		dst = append(dst, hex.Wrap(center+off, length))
	}
	return dst
}

// Sample sums fetch over the ring around center and divides by √count, not count
// Empty rings return 0
func (s *RingSampler) Sample(center, length int, fetch func(cell int) float64) float64 {
	if len(s.offsets) == 0 {
		return 0
	}
	s.scratch = s.scratch[:0]
	for _, off := range s.offsets {
		s.scratch = append(s.scratch, fetch(hex.Wrap(center+off, length)))
	}
	return floats.Sum(s.scratch) / math.Sqrt(float64(len(s.scratch)))
}

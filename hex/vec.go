package hex

import "math"

// Vec3 is a fractional per-tick displacement along the three lattice axes
type Vec3 struct {
	X, Y, Z float64
}

// Add returns a + b
func (a Vec3) Add(b Vec3) Vec3 {
	return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Scale returns v scaled by s
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mod wraps each component by floating-point remainder of n
// Result keeps the sign of the input, matching math.Mod
func (v Vec3) Mod(n float64) Vec3 {
	return Vec3{math.Mod(v.X, n), math.Mod(v.Y, n), math.Mod(v.Z, n)}
}

// Finite returns v with NaN and infinite components replaced by 0
func (v Vec3) Finite() Vec3 {
	return Vec3{finite(v.X), finite(v.Y), finite(v.Z)}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// IsZero reports whether all components are zero
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Package hex implements the index geometry of a hexagonal shell lattice.
//
// A lattice of radius r holds r³ − (r−1)³ cells. Each linear cell index maps
// to a cube-constrained 3-axis coordinate; the two skew axes fold into the
// linear index through the strides YStep and ZStep.
package hex

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRadius is returned for lattice radii below 1
var ErrInvalidRadius = errors.New("hex: radius must be >= 1")

// Geometry holds the derived constants of a lattice of a given radius
// Zero value is not usable; construct with NewGeometry
type Geometry struct {
	Radius int
	Length int
	YAxis  int
	YStep  int
	ZStep  int
}

// Coord is a 3-axis lattice coordinate
type Coord struct {
	X, Y, Z int
}

// NewGeometry computes lattice constants for radius r
func NewGeometry(r int) (Geometry, error) {
	if r < 1 {
		return Geometry{}, fmt.Errorf("%w: got %d", ErrInvalidRadius, r)
	}
	yAxis := 3*r - 2
	return Geometry{
		Radius: r,
		Length: ShellLength(r),
		YAxis:  yAxis,
		YStep:  yAxis,
		ZStep:  yAxis + 1,
	}, nil
}

// ShellLength returns the cell count of a lattice of radius r: r³ − (r−1)³
func ShellLength(r int) int {
	if r < 1 {
		return 0
	}
	return r*r*r - (r-1)*(r-1)*(r-1)
}

// Wrap folds i into [0, n). Non-positive n yields 0
func Wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i %= n; i < 0 {
		i += n
	}
	return i
}

// ToCoords converts a linear index into its lattice coordinate
// Indices outside [0, Length) are wrapped first
func (g Geometry) ToCoords(i int) Coord {
	i = Wrap(i, g.Length)
	c, ok := g.reduce(i)
	if ok && g.inside(c) {
		return c
	}
	// Folded branch of the lattice
	c, _ = g.reduce(i - g.Length)
	return c
}

// Encode folds a coordinate back into its linear index
// z counts carries out of negative x, so it contributes with negative sign
func (g Geometry) Encode(c Coord) int {
	return Wrap(c.X+c.Y*g.YStep-c.Z*g.ZStep, g.Length)
}

// Index resolves fractional axis positions into a linear index wrapped to n
func (g Geometry) Index(x, y, z float64, n int) int {
	i := int(math.Round(x)) + int(math.Round(y))*g.YStep + int(math.Round(z))*g.ZStep
	return Wrap(i, n)
}

// RadiusFromFraction maps a normalized control value to a radius in [1, Radius]
func (g Geometry) RadiusFromFraction(f float64) int {
	if math.IsNaN(f) {
		return 1
	}
	r := int(math.Round(float64(g.Radius) * f))
	return max(1, min(r, g.Radius))
}

// reduce applies the staircase carry rule starting from (x, 0, 0)
// Each carry moves x by roughly one row; 2·Radius carries cover the folded range
func (g Geometry) reduce(x int) (Coord, bool) {
	c := Coord{X: x}
	for carries := 0; carries <= 2*g.Radius; carries++ {
		switch {
		case c.X < 0:
			c.X += g.YAxis + 1
			c.Z++
		case c.X < g.Radius:
			return c, true
		default:
			c.X -= g.YAxis
			c.Y++
		}
	}
	return c, false
}

func (g Geometry) inside(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.Z >= 0 &&
		c.X < g.Radius && c.Y < g.Radius && c.Z < g.Radius
}

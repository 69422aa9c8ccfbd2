package hex

import "math"

// DefaultCellSize is the hex cell size used for display layouts
const DefaultCellSize = 0.5

// Point is a cartesian display position
type Point struct {
	X, Y float64
}

// Layout projects lattice coordinates onto a flat hex grid for rendering
type Layout struct {
	Geometry
	Size   float64
	DX, DY float64
	Width  float64
	Height float64
}

// NewLayout builds a display layout for g with cell size; size <= 0 uses DefaultCellSize
func NewLayout(g Geometry, size float64) Layout {
	if size <= 0 {
		size = DefaultCellSize
	}
	dx := size * 3 / 2
	dy := size * math.Sqrt(3)
	diameter := float64(g.Radius * 2)
	return Layout{
		Geometry: g,
		Size:     size,
		DX:       dx,
		DY:       dy,
		Width:    diameter * dx,
		Height:   diameter * dy,
	}
}

// Position returns the display position of coordinate c
// (x+y)/2 truncates, offsetting alternate columns by half a row
func (l Layout) Position(c Coord) Point {
	return Point{
		X: l.Width/2 + float64(c.X-c.Y)*l.DX,
		Y: l.Height/2 + float64(c.Z-(c.X+c.Y)/2)*l.DY,
	}
}

// PositionAt returns the display position of linear index i
func (l Layout) PositionAt(i int) Point {
	return l.Position(l.ToCoords(i))
}

package lattice

import (
	"math"

	"github.com/thestrangeagency/HarmonicAnomalies/hex"
)

// Cursor is a write or read position moving through the lattice
// Accumulators are mode-independent, so mode changes need no cleanup
type Cursor struct {
	pos   hex.Vec3 // Fractional axis accumulators
	index int      // Resolved cell index

	mode      Mode
	maxRadius int

	ring         int // Ring-walk offset from the vector position
	vortexRadius int
	dir          int
	step         int
}

func newCursor(radius int) Cursor {
	return Cursor{
		mode:         ModeVector,
		maxRadius:    radius,
		vortexRadius: radius / 2,
	}
}

// Index returns the resolved cell index
func (c Cursor) Index() int { return c.index }

// Mode returns the traversal mode
func (c Cursor) Mode() Mode { return c.mode }

// Position returns the fractional axis accumulators
func (c Cursor) Position() hex.Vec3 { return c.pos }

// MaxRadius returns the ring edge length in RING mode and the vortex bound
func (c Cursor) MaxRadius() int { return c.maxRadius }

// VortexRadius returns the current edge length of the vortex walk
func (c Cursor) VortexRadius() int { return c.vortexRadius }

// Direction returns the index of the current ring edge direction
func (c Cursor) Direction() int { return c.dir }

// edgeLength is the number of steps taken along one ring edge
func (c *Cursor) edgeLength() int {
	if c.mode == ModeVortex {
		return c.vortexRadius
	}
	return c.maxRadius
}

// advance moves the cursor one tick and resolves its index into [0, active)
func (c *Cursor) advance(g hex.Geometry, delta hex.Vec3, active int) {
	c.pos = c.pos.Add(delta.Finite()).Mod(float64(g.Length))
	vector := int(math.Round(c.pos.X)) +
		int(math.Round(c.pos.Y))*g.YStep +
		int(math.Round(c.pos.Z))*g.ZStep

	if c.mode.walksRing() {
		c.walk(g, active)
	}

	c.index = hex.Wrap(vector+c.ring, active)
}

// walk steps the ring cursor along the current edge, turning after each edge
func (c *Cursor) walk(g hex.Geometry, active int) {
	dirs := g.Directions()
	c.ring += dirs[c.dir]

	c.step++
	if c.step >= c.edgeLength() {
		c.step = 0
		c.dir++

		if c.dir == hex.NumDirections && c.mode == ModeVortex {
			c.vortexRadius = (c.vortexRadius + 1) % c.maxRadius
		}
		c.dir %= hex.NumDirections
	}

	c.ring = hex.Wrap(c.ring, active)
}

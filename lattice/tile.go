package lattice

// DefaultDecayFactor is the per-frame fade applied to cell activity flags
const DefaultDecayFactor = 0.75

// Tile is one lattice cell as seen by renderers
// Writ and Read are activity flags in [0, 1] that fade once per frame
type Tile struct {
	X, Y float64 // Cached display position
	V    float64 // Stored sample, or the meter level in grain storage
	Writ float64
	Read float64
}

func (t *Tile) decay(factor float64) {
	t.Writ *= factor
	t.Read *= factor
}

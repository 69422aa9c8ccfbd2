package lattice

import (
	"fmt"
	"strings"
)

// StorageKind selects the per-cell storage strategy
type StorageKind int

const (
	StorageScalar StorageKind = iota // One sample per cell
	StorageGrain                     // One circular Grain buffer per cell
)

func (k StorageKind) String() string {
	switch k {
	case StorageScalar:
		return "scalar"
	case StorageGrain:
		return "grain"
	default:
		return fmt.Sprintf("StorageKind(%d)", int(k))
	}
}

// ParseStorageKind accepts "scalar" or "grain", case-insensitive
func ParseStorageKind(s string) (StorageKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scalar":
		return StorageScalar, nil
	case "grain", "grains":
		return StorageGrain, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStorage, s)
	}
}

// CellStorage holds the audio content of the lattice cells
// Activity flags live on the tiles and are handled by the Lattice
type CellStorage interface {
	Kind() StorageKind
	// Write blends v into the cell under the write cursor
	Write(cell int, v, blend float64)
	// Read consumes the value under the read cursor
	Read(cell int) float64
	// Tap samples another cell aligned with the read cursor cell without consuming it
	Tap(cursor, cell int) float64
	// WriteBoundary reports whether the outer write cursor may leave cell
	WriteBoundary(cell int) bool
	// ReadBoundary reports whether the outer read cursor may leave cell
	ReadBoundary(cell int) bool
	// Leave is called when the outer write cursor moves off cell
	Leave(cell int)
}

// scalarStorage keeps one value per cell directly on the tiles
type scalarStorage struct {
	tiles []Tile
}

func (s *scalarStorage) Kind() StorageKind { return StorageScalar }

func (s *scalarStorage) Write(cell int, v, blend float64) {
	t := &s.tiles[cell]
	t.V = v*blend + t.V*(1-blend)
}

func (s *scalarStorage) Read(cell int) float64 { return s.tiles[cell].V }

func (s *scalarStorage) Tap(_, cell int) float64 { return s.tiles[cell].V }

func (s *scalarStorage) WriteBoundary(int) bool { return true }

func (s *scalarStorage) ReadBoundary(int) bool { return true }

func (s *scalarStorage) Leave(int) {}

// grainStorage nests a Grain in every cell; outer cursors are gated by the
// inner heads reaching their wrap boundary
type grainStorage struct {
	tiles  []Tile
	grains []Grain
}

func (s *grainStorage) Kind() StorageKind { return StorageGrain }

func (s *grainStorage) Write(cell int, v, blend float64) {
	s.grains[cell].Write(v, blend)
}

func (s *grainStorage) Read(cell int) float64 {
	return s.grains[cell].Read()
}

// Tap reads cell at the inner read position of the cursor cell
func (s *grainStorage) Tap(cursor, cell int) float64 {
	return s.grains[cell].Peek(s.grains[cursor].ReadIndex())
}

func (s *grainStorage) WriteBoundary(cell int) bool {
	return s.grains[cell].AtWriteStart()
}

func (s *grainStorage) ReadBoundary(cell int) bool {
	return s.grains[cell].AtReadStart()
}

// Leave publishes the finished grain's level as the cell value
func (s *grainStorage) Leave(cell int) {
	s.tiles[cell].V = s.grains[cell].Level()
}

// GrainState is a read-only view of one cell's grain heads and level
type GrainState struct {
	WriteIndex int
	ReadIndex  int
	Len        int
	Level      float64
}

func (s *grainStorage) state(cell int) GrainState {
	g := &s.grains[cell]
	return GrainState{
		WriteIndex: g.WriteIndex(),
		ReadIndex:  g.ReadIndex(),
		Len:        g.Len(),
		Level:      g.Level(),
	}
}

// Package lattice implements a hexagonal delay-line memory.
//
// Samples are stored in the cells of a hex shell lattice and addressed by
// two independently moving cursors. The write cursor blends incoming samples
// into cells; the read cursor returns a single cell or a normalized sum over a
// ring of cells around it. Cursors move as straight vectors, fixed rings or
// expanding vortex spirals.
//
// All methods are safe for concurrent use: the audio path calls Tick while the
// render path calls Decay and Snapshot.
package lattice

import (
	"errors"
	"fmt"
	"sync"

	"github.com/thestrangeagency/HarmonicAnomalies/hex"
)

// Sentinel errors
var (
	ErrUnknownStorage = errors.New("lattice: unknown storage kind")
	ErrInvalidConfig  = errors.New("lattice: invalid config")
)

// Config describes a lattice at construction time
type Config struct {
	Radius        int
	Storage       StorageKind
	GrainSize     int // Samples per cell, grain storage only
	MeterSize     int // Magnitudes averaged per cell level, grain storage only
	MaxRingRadius int
	DecayFactor   float64
	CellSize      float64 // Display cell size for cached tile positions
}

// DefaultConfig returns a radius-16 scalar lattice
func DefaultConfig() Config {
	return Config{
		Radius:        16,
		Storage:       StorageScalar,
		GrainSize:     DefaultGrainSize,
		MeterSize:     DefaultMeterSize,
		MaxRingRadius: DefaultMaxRingRadius,
		DecayFactor:   DefaultDecayFactor,
		CellSize:      hex.DefaultCellSize,
	}
}

// Validate reports the first invalid field
func (c Config) Validate() error {
	if c.Radius < 1 {
		return fmt.Errorf("%w: radius %d", ErrInvalidConfig, c.Radius)
	}
	switch c.Storage {
	case StorageScalar:
	case StorageGrain:
		if c.GrainSize < 1 {
			return fmt.Errorf("%w: grain size %d", ErrInvalidConfig, c.GrainSize)
		}
		if c.MeterSize < 1 {
			return fmt.Errorf("%w: meter size %d", ErrInvalidConfig, c.MeterSize)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownStorage, int(c.Storage))
	}
	if c.MaxRingRadius < 0 {
		return fmt.Errorf("%w: max ring radius %d", ErrInvalidConfig, c.MaxRingRadius)
	}
	if c.DecayFactor < 0 || c.DecayFactor > 1 {
		return fmt.Errorf("%w: decay factor %v", ErrInvalidConfig, c.DecayFactor)
	}
	return nil
}

// Lattice owns every cell and both cursors
type Lattice struct {
	mu sync.Mutex

	geom   hex.Geometry
	layout hex.Layout
	cfg    Config

	tiles   []Tile
	storage CellStorage
	ring    *RingSampler

	write Cursor
	read  Cursor

	writeLength int
	readLength  int

	ticks uint64
}

// New allocates all cells and caches their display positions
func New(cfg Config) (*Lattice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	geom, err := hex.NewGeometry(cfg.Radius)
	if err != nil {
		return nil, err
	}

	l := &Lattice{
		geom:        geom,
		layout:      hex.NewLayout(geom, cfg.CellSize),
		cfg:         cfg,
		tiles:       make([]Tile, geom.Length),
		ring:        NewRingSampler(geom, cfg.MaxRingRadius),
		write:       newCursor(geom.Radius),
		read:        newCursor(geom.Radius),
		writeLength: geom.Length,
		readLength:  geom.Length,
	}

	for i := range l.tiles {
		p := l.layout.PositionAt(i)
		l.tiles[i].X = p.X
		l.tiles[i].Y = p.Y
	}

	switch cfg.Storage {
	case StorageGrain:
		l.storage = &grainStorage{
			tiles:  l.tiles,
			grains: newGrains(geom.Length, cfg.GrainSize, cfg.MeterSize),
		}
	default:
		l.storage = &scalarStorage{tiles: l.tiles}
	}

	return l, nil
}

// Geometry returns the lattice constants
func (l *Lattice) Geometry() hex.Geometry { return l.geom }

// Layout returns the display layout used for tile positions
func (l *Lattice) Layout() hex.Layout { return l.layout }

// Config returns the construction config
func (l *Lattice) Config() Config { return l.cfg }

// StorageKind returns the cell storage strategy
func (l *Lattice) StorageKind() StorageKind { return l.storage.Kind() }

// Length returns the total cell count
func (l *Lattice) Length() int { return l.geom.Length }

// Tick runs one audio sample: apply controls, write, read, advance cursors
func (l *Lattice) Tick(c Controls) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.apply(c)
	l.setVoltage(c.Value, c.Blend)
	out := l.voltage()
	l.advanceWrite(c.WriteDelta)
	l.advanceRead(c.ReadDelta)
	l.ticks++
	return out
}

// apply pushes the per-tick control values into cursor and crop state
func (l *Lattice) apply(c Controls) {
	l.write.mode = ModeFromValue(c.WriteMode)
	l.read.mode = ModeFromValue(c.ReadMode)
	l.write.maxRadius = l.geom.RadiusFromFraction(c.WriteMaxRadius)
	l.read.maxRadius = l.geom.RadiusFromFraction(c.ReadMaxRadius)
	l.setCrop(c.Crop)
	l.ring.SetRadius(c.RingRadius)
}

// SetVoltage blends v into the cell under the write cursor
func (l *Lattice) SetVoltage(v, blend float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setVoltage(v, blend)
}

func (l *Lattice) setVoltage(v, blend float64) {
	blend = clamp01(blend)
	l.storage.Write(l.write.index, v, blend)
	l.tiles[l.write.index].Writ = 1
}

// Voltage reads at the read cursor, over the ring when its radius is >= 1
func (l *Lattice) Voltage() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.voltage()
}

func (l *Lattice) voltage() float64 {
	if l.ring.Radius() < 1 {
		l.tiles[l.read.index].Read = 1
		return l.storage.Read(l.read.index)
	}
	return l.ringVoltage()
}

func (l *Lattice) ringVoltage() float64 {
	cursor := l.read.index
	out := l.ring.Sample(cursor, l.readLength, func(cell int) float64 {
		l.tiles[cell].Read = 1
		return l.storage.Tap(cursor, cell)
	})
	if l.storage.Kind() == StorageGrain {
		// keep the read grain's head moving so the outer cursor still advances
		l.storage.Read(cursor)
	}
	return out
}

// AdvanceWrite moves the write cursor by delta
func (l *Lattice) AdvanceWrite(delta hex.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advanceWrite(delta)
}

func (l *Lattice) advanceWrite(delta hex.Vec3) {
	from := l.write.index
	if !l.storage.WriteBoundary(from) {
		return
	}
	l.write.advance(l.geom, delta, l.writeLength)
	l.storage.Leave(from)
}

// AdvanceRead moves the read cursor by delta
func (l *Lattice) AdvanceRead(delta hex.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advanceRead(delta)
}

func (l *Lattice) advanceRead(delta hex.Vec3) {
	if !l.storage.ReadBoundary(l.read.index) {
		return
	}
	l.read.advance(l.geom, delta, l.readLength)
}

// SetWriteMode selects the write traversal from a control value
func (l *Lattice) SetWriteMode(v float64) {
	l.mu.Lock()
	l.write.mode = ModeFromValue(v)
	l.mu.Unlock()
}

// SetReadMode selects the read traversal from a control value
func (l *Lattice) SetReadMode(v float64) {
	l.mu.Lock()
	l.read.mode = ModeFromValue(v)
	l.mu.Unlock()
}

// SetWriteMaxRadius maps a normalized value to the write ring radius
func (l *Lattice) SetWriteMaxRadius(f float64) {
	l.mu.Lock()
	l.write.maxRadius = l.geom.RadiusFromFraction(f)
	l.mu.Unlock()
}

// SetReadMaxRadius maps a normalized value to the read ring radius
func (l *Lattice) SetReadMaxRadius(f float64) {
	l.mu.Lock()
	l.read.maxRadius = l.geom.RadiusFromFraction(f)
	l.mu.Unlock()
}

// SetCrop shrinks the addressable range to the shell of radius round(f·radius)
// Storage is kept; cells past the cropped length become unreachable
func (l *Lattice) SetCrop(f float64) {
	l.mu.Lock()
	l.setCrop(f)
	l.mu.Unlock()
}

func (l *Lattice) setCrop(f float64) {
	n := hex.ShellLength(l.geom.RadiusFromFraction(f))
	l.writeLength = n
	l.readLength = n
}

// SetRingRadius sets the read ring radius, clamped to [0, MaxRingRadius]
// Returns true if the ring offsets were regenerated
func (l *Lattice) SetRingRadius(r int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.SetRadius(r)
}

// RingRadius returns the current read ring radius
func (l *Lattice) RingRadius() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Radius()
}

// RingOffsets returns a copy of the current ring offsets
func (l *Lattice) RingOffsets() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.ring.Offsets()...)
}

// RingCells returns the cells sampled by a ring read at the current cursor
func (l *Lattice) RingCells() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ring.Cells(nil, l.read.index, l.readLength)
}

// WriteIndex returns the write cursor cell
func (l *Lattice) WriteIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write.index
}

// ReadIndex returns the read cursor cell
func (l *Lattice) ReadIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read.index
}

// Cursors returns the write index, read index and ring radius under one lock
func (l *Lattice) Cursors() (write, read, ringRadius int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write.index, l.read.index, l.ring.Radius()
}

// WriteCursor returns a copy of the write cursor state
func (l *Lattice) WriteCursor() Cursor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write
}

// SyncRead moves the read cursor onto the write cursor position and restarts
// its ring walk. Returns the new read index
func (l *Lattice) SyncRead() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	mode, maxRadius := l.read.mode, l.read.maxRadius
	l.read = newCursor(l.geom.Radius)
	l.read.mode, l.read.maxRadius = mode, maxRadius
	l.read.pos = l.write.pos
	l.read.index = hex.Wrap(l.write.index, l.readLength)
	return l.read.index
}

// ReadCursor returns a copy of the read cursor state
func (l *Lattice) ReadCursor() Cursor {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read
}

// WriteLength returns the cropped write range
func (l *Lattice) WriteLength() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeLength
}

// ReadLength returns the cropped read range
func (l *Lattice) ReadLength() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLength
}

// Ticks returns the number of Tick calls so far
func (l *Lattice) Ticks() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// Tile returns a copy of cell i; i is wrapped into the full length
func (l *Lattice) Tile(i int) Tile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tiles[hex.Wrap(i, l.geom.Length)]
}

// Grain returns the grain state of cell i; ok is false for scalar storage
func (l *Lattice) Grain(i int) (GrainState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	gs, ok := l.storage.(*grainStorage)
	if !ok {
		return GrainState{}, false
	}
	return gs.state(hex.Wrap(i, l.geom.Length)), true
}

// Decay fades every cell's activity flags once; call once per render frame
func (l *Lattice) Decay() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.tiles {
		l.tiles[i].decay(l.cfg.DecayFactor)
	}
}

// Snapshot copies all tiles into dst, growing it as needed
func (l *Lattice) Snapshot(dst []Tile) []Tile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append(dst[:0], l.tiles...)
}

// Frame is everything a renderer needs for one frame
type Frame struct {
	Tiles       []Tile
	WriteIndex  int
	ReadIndex   int
	RingCells   []int
	WriteMode   Mode
	ReadMode    Mode
	WriteLength int
	ReadLength  int
	RingRadius  int
}

// Frame decays activity flags and captures a consistent render frame
// Slices of prev are reused when non-nil
func (l *Lattice) Frame(prev *Frame) Frame {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.tiles {
		l.tiles[i].decay(l.cfg.DecayFactor)
	}

	var f Frame
	if prev != nil {
		f.Tiles = prev.Tiles[:0]
		f.RingCells = prev.RingCells[:0]
	}
	f.Tiles = append(f.Tiles, l.tiles...)
	f.RingCells = l.ring.Cells(f.RingCells, l.read.index, l.readLength)
	f.WriteIndex = l.write.index
	f.ReadIndex = l.read.index
	f.WriteMode = l.write.mode
	f.ReadMode = l.read.mode
	f.WriteLength = l.writeLength
	f.ReadLength = l.readLength
	f.RingRadius = l.ring.Radius()
	return f
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

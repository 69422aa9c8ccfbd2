package lattice

import "gonum.org/v1/gonum/stat"

const (
	// DefaultGrainSize is the per-cell buffer length in samples (100 ms at 44.1 kHz)
	DefaultGrainSize = 4410
	// DefaultMeterSize is the number of magnitudes averaged for a cell's level
	DefaultMeterSize = 64
)

// Grain is a per-cell circular audio buffer with its own write and read heads
// Heads wrap independently of the outer lattice cursors
type Grain struct {
	buffer     []float64
	writeIndex int
	readIndex  int

	meter      []float64 // Recent |v| written, oldest overwritten first
	meterIndex int
}

// newGrains allocates n grains backed by two shared slabs
func newGrains(n, size, meterSize int) []Grain {
	samples := make([]float64, n*size)
	meters := make([]float64, n*meterSize)
	grains := make([]Grain, n)
	for i := range grains {
		grains[i].buffer = samples[i*size : (i+1)*size : (i+1)*size]
		grains[i].meter = meters[i*meterSize : (i+1)*meterSize : (i+1)*meterSize]
	}
	return grains
}

// Write blends v into the slot under the write head and advances it
// blend is expected in [0, 1]
func (g *Grain) Write(v, blend float64) {
	g.buffer[g.writeIndex] = v*blend + g.buffer[g.writeIndex]*(1-blend)

	mag := g.buffer[g.writeIndex]
	if mag < 0 {
		mag = -mag
	}
	g.meter[g.meterIndex] = mag
	g.meterIndex = (g.meterIndex + 1) % len(g.meter)

	g.writeIndex = (g.writeIndex + 1) % len(g.buffer)
}

// Read returns the sample under the read head and advances it
func (g *Grain) Read() float64 {
	v := g.buffer[g.readIndex]
	g.readIndex = (g.readIndex + 1) % len(g.buffer)
	return v
}

// Peek returns the sample at position i without moving either head
func (g *Grain) Peek(i int) float64 {
	n := len(g.buffer)
	return g.buffer[((i%n)+n)%n]
}

// AtWriteStart reports whether the write head sits on the wrap boundary
func (g *Grain) AtWriteStart() bool { return g.writeIndex == 0 }

// AtReadStart reports whether the read head sits on the wrap boundary
func (g *Grain) AtReadStart() bool { return g.readIndex == 0 }

// WriteIndex returns the write head position
func (g *Grain) WriteIndex() int { return g.writeIndex }

// ReadIndex returns the read head position
func (g *Grain) ReadIndex() int { return g.readIndex }

// Len returns the buffer capacity in samples
func (g *Grain) Len() int { return len(g.buffer) }

// Level returns the mean magnitude of the most recent writes
func (g *Grain) Level() float64 {
	return stat.Mean(g.meter, nil)
}

// Package status publishes lattice runtime counters from the audio goroutine
// to readers such as the renderer and telemetry without locking.
package status

import "sync/atomic"

// Metrics holds the live lattice counters
// The audio callback is the only writer; any goroutine may read
type Metrics struct {
	WriteIndex atomic.Int64
	ReadIndex  atomic.Int64
	RingRadius atomic.Int64
	Ticks      atomic.Uint64
	Output     AtomicFloat
	Peak       AtomicFloat   // Largest |Output| since the last TakePeak
	Overloads  atomic.Uint64 // Samples with |Output| above 1
}

// Sample is a point-in-time copy of Metrics
type Sample struct {
	WriteIndex int
	ReadIndex  int
	RingRadius int
	Ticks      uint64
	Output     float64
	Peak       float64
	Overloads  uint64
}

// NewMetrics returns zeroed metrics
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Publish records the state after one lattice tick
func (m *Metrics) Publish(write, read, ringRadius int, out float64) {
	m.WriteIndex.Store(int64(write))
	m.ReadIndex.Store(int64(read))
	m.RingRadius.Store(int64(ringRadius))
	m.Output.Set(out)
	mag := out
	if mag < 0 {
		mag = -mag
	}
	m.Peak.StoreMax(mag)
	if mag > 1 {
		m.Overloads.Add(1)
	}
	m.Ticks.Add(1)
}

// TakePeak returns the peak magnitude and resets it
func (m *Metrics) TakePeak() float64 {
	return m.Peak.Swap(0)
}

// Snapshot copies the counters; fields are read individually
func (m *Metrics) Snapshot() Sample {
	return Sample{
		WriteIndex: int(m.WriteIndex.Load()),
		ReadIndex:  int(m.ReadIndex.Load()),
		RingRadius: int(m.RingRadius.Load()),
		Ticks:      m.Ticks.Load(),
		Output:     m.Output.Get(),
		Peak:       m.Peak.Get(),
		Overloads:  m.Overloads.Load(),
	}
}

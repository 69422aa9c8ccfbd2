// Package audio connects the lattice to beep: a Processor streamer that runs
// one lattice tick per output sample, tone sources, and WAV input and output.
package audio

import (
	"errors"
	"sync"

	"github.com/gopxl/beep"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/status"
)

// Sentinel errors
var (
	ErrUnknownWave = errors.New("unknown wave type")
	ErrNoLattice   = errors.New("processor requires a lattice")
)

// Processor is a beep.Streamer running the lattice as a delay effect
// The source is mono-summed into Controls.Value each sample; the lattice
// output is written to both channels
type Processor struct {
	lat     *lattice.Lattice
	metrics *status.Metrics

	mu       sync.Mutex
	controls lattice.Controls

	readSync *ReadSync

	src beep.Streamer
	buf [][2]float64
	err error
}

// NewProcessor wraps src, which may be nil for a silent input
// metrics may be nil
func NewProcessor(l *lattice.Lattice, src beep.Streamer, metrics *status.Metrics) (*Processor, error) {
	if l == nil {
		return nil, ErrNoLattice
	}
	return &Processor{
		lat:      l,
		metrics:  metrics,
		controls: lattice.DefaultControls(),
		src:      src,
	}, nil
}

// Lattice returns the processed lattice
func (p *Processor) Lattice() *lattice.Lattice { return p.lat }

// Controls returns the controls applied to the next buffer
func (p *Processor) Controls() lattice.Controls {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controls
}

// SetControls replaces the controls; Value is overwritten by the source
func (p *Processor) SetControls(c lattice.Controls) {
	p.mu.Lock()
	p.controls = c
	p.mu.Unlock()
}

// Update edits the controls in place under the lock
func (p *Processor) Update(fn func(c *lattice.Controls)) {
	p.mu.Lock()
	fn(&p.controls)
	p.mu.Unlock()
}

// SetReadSync attaches a repeater-driven read sync; nil detaches it
// Call before streaming starts
func (p *Processor) SetReadSync(s *ReadSync) { p.readSync = s }

// ReadSync returns the attached read sync, if any
func (p *Processor) ReadSync() *ReadSync { return p.readSync }

// Stream never ends; once the source is exhausted the input is silent and the
// lattice keeps sounding
func (p *Processor) Stream(samples [][2]float64) (n int, ok bool) {
	c := p.Controls()
	in := p.fill(len(samples))

	for i := range samples {
		c.Value = (in[i][0] + in[i][1]) / 2
		out := p.lat.Tick(c)
		samples[i][0] = out
		samples[i][1] = out
		if p.metrics == nil && p.readSync == nil {
			continue
		}
		w, r, ring := p.lat.Cursors()
		if p.readSync != nil {
			r = p.readSync.step(p.lat, w, r)
		}
		if p.metrics != nil {
			p.metrics.Publish(w, r, ring, out)
		}
	}
	return len(samples), true
}

// Err returns the error that ended the source, if any
func (p *Processor) Err() error { return p.err }

// fill reads n input samples from the source, zero padding the remainder
func (p *Processor) fill(n int) [][2]float64 {
	if cap(p.buf) < n {
		p.buf = make([][2]float64, n)
	}
	buf := p.buf[:n]
	clear(buf)

	filled := 0
	for p.src != nil && filled < n {
		got, ok := p.src.Stream(buf[filled:])
		filled += got
		if !ok {
			p.err = p.src.Err()
			p.src = nil
		}
	}
	return buf
}

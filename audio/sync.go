package audio

import (
	"github.com/gopxl/beep"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/repeat"
)

// ReadSync drives a Repeater from cursor laps and snaps the read cursor onto
// the write cursor on every output pulse. Write laps feed the pulse input and
// read laps the clock, so every Period write laps the read cursor is re-synced
// Repeat times, once per read lap
type ReadSync struct {
	rep *repeat.Repeater
	dt  float64

	lastWrite int
	lastRead  int
	high      bool

	syncs  int
	lights repeat.Outputs
}

// NewReadSync wraps rep for a stream running at rate
func NewReadSync(rep *repeat.Repeater, rate beep.SampleRate) *ReadSync {
	dt := 0.0
	if rate > 0 {
		dt = 1 / float64(rate)
	}
	return &ReadSync{rep: rep, dt: dt}
}

// Repeater returns the driven repeater
func (s *ReadSync) Repeater() *repeat.Repeater { return s.rep }

// Syncs returns how many times the read cursor has been re-synced
func (s *ReadSync) Syncs() int { return s.syncs }

// Lights returns the repeater outputs of the last sample
func (s *ReadSync) Lights() repeat.Outputs { return s.lights }

// step runs one sample after the lattice tick and returns the read index
func (s *ReadSync) step(l *lattice.Lattice, write, read int) int {
	in := repeat.Inputs{
		Pulse: repeat.Input{Voltage: lapVoltage(write, s.lastWrite), Connected: true},
		Clock: repeat.Input{Voltage: lapVoltage(read, s.lastRead), Connected: true},
	}
	s.lastWrite = write

	s.lights = s.rep.Process(in, s.dt)
	high := s.lights.Pulse > 0
	if high && !s.high {
		read = l.SyncRead()
		s.syncs++
	}
	s.high = high
	s.lastRead = read
	return read
}

// lapVoltage is a one-sample gate when a cursor arrives back on cell 0
func lapVoltage(index, last int) float64 {
	if index == 0 && last != 0 {
		return repeat.PulseVoltage
	}
	return 0
}

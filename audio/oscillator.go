package audio

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

func (w WaveType) String() string {
	switch w {
	case WaveSine:
		return "sine"
	case WaveSquare:
		return "square"
	case WaveSaw:
		return "saw"
	case WaveNoise:
		return "noise"
	default:
		return fmt.Sprintf("WaveType(%d)", int(w))
	}
}

// ParseWave maps a wave name to its WaveType
func ParseWave(s string) (WaveType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sine":
		return WaveSine, nil
	case "square":
		return WaveSquare, nil
	case "saw":
		return WaveSaw, nil
	case "noise":
		return WaveNoise, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWave, s)
	}
}

// oscillator generates an endless tone for feeding the lattice
type oscillator struct {
	freq  float64
	phase float64
	amp   float64
	wave  WaveType
	rate  beep.SampleRate
}

// NewOscillator creates an infinite test tone at amplitude amp
func NewOscillator(freq, amp float64, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq: freq,
		amp:  amp,
		wave: wave,
		rate: rate,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}
		val *= o.amp

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase) // Keep in [0, 1)
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// NewVolume applies a linear gain to s
// math.Log2(0) is -Inf, so zero or negative gain is silent
func NewVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// Player owns the speaker and plays one streamer through a master volume
type Player struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	buffer      time.Duration
	ctrl        *beep.Ctrl
	volume      *effects.Volume
	initialized bool
}

// NewPlayer creates a player; the speaker is not opened until Start
func NewPlayer(rate beep.SampleRate, buffer time.Duration) *Player {
	return &Player{rate: rate, buffer: buffer}
}

// Start opens the speaker and begins playback of s at volume
func (p *Player) Start(s beep.Streamer, volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.rate, p.rate.N(p.buffer)); err != nil {
		return err
	}

	p.ctrl = &beep.Ctrl{Streamer: s}
	p.volume = NewVolume(p.ctrl, volume)
	speaker.Play(p.volume)
	p.initialized = true
	return nil
}

// TogglePause pauses or resumes playback and returns the new paused state
func (p *Player) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return false
	}
	speaker.Lock()
	p.ctrl.Paused = !p.ctrl.Paused
	paused := p.ctrl.Paused
	speaker.Unlock()
	return paused
}

// SetVolume changes the master gain while playing
func (p *Player) SetVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	next := NewVolume(nil, vol)
	speaker.Lock()
	p.volume.Volume = next.Volume
	p.volume.Silent = next.Silent
	speaker.Unlock()
}

// Close stops playback and releases the speaker
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}

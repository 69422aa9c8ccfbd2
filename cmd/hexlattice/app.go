package main

import (
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"

	"github.com/thestrangeagency/HarmonicAnomalies/audio"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/render"
)

// App is the interactive terminal front end: live audio through the speaker,
// key bindings editing the processor controls, and a frame ticker drawing
// the lattice
type App struct {
	screen   tcell.Screen
	session  *session
	player   *audio.Player
	renderer *render.Renderer
	logger   *slog.Logger

	frame     lattice.Frame
	meterPeak float64 // Peak since the last meter row
	audioInit bool
}

// NewApp opens the terminal and starts playback
// Audio failure is not fatal: the lattice is still drawn, but nothing ticks it
func NewApp(s *session, logger *slog.Logger) (*App, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return newApp(screen, s, logger), nil
}

func newApp(screen tcell.Screen, s *session, logger *slog.Logger) *App {
	a := &App{
		screen:   screen,
		session:  s,
		renderer: render.NewRenderer(s.lat.Layout()),
		logger:   logger,
	}
	a.renderer.Resize(screen.Size())
	return a
}

func (a *App) initAudio() error {
	cfg := a.session.cfg.Audio
	a.player = audio.NewPlayer(beep.SampleRate(cfg.SampleRate), cfg.Buffer())
	if err := a.player.Start(a.session.proc, cfg.MasterVolume); err != nil {
		return err
	}
	a.audioInit = true
	return nil
}

// handleInput returns false when the app should exit
func (a *App) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		var act action
		maxRing := a.session.cfg.Lattice.MaxRingRadius
		a.session.proc.Update(func(c *lattice.Controls) {
			act = applyKey(c, ev, maxRing)
		})

		switch act {
		case actionQuit:
			return false
		case actionPause:
			if a.audioInit {
				paused := a.player.TogglePause()
				a.logger.Debug("playback toggled", "paused", paused)
			}
		case actionReset:
			a.session.proc.SetControls(a.session.initial)
			a.logger.Debug("controls reset")
		case actionDump:
			a.dumpCells()
		default:
			a.logger.Debug("controls", "controls", a.session.proc.Controls())
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.renderer.Resize(a.screen.Size())
	}
	return true
}

func (a *App) dumpCells() {
	if a.session.tel == nil {
		a.logger.Debug("cell dump skipped, telemetry disabled")
		return
	}
	if err := a.session.tel.WriteCells(a.frame.Tiles); err != nil {
		a.logger.Error("cell dump failed", "error", err)
		return
	}
	a.logger.Info("cells written", "dir", a.session.tel.Dir())
}

// draw decays activity, captures a frame and renders it
func (a *App) draw() {
	a.frame = a.session.lat.Frame(&a.frame)
	m := a.session.metrics.Snapshot()
	m.Peak = a.session.metrics.TakePeak()
	a.meterPeak = max(a.meterPeak, m.Peak)
	a.renderer.Draw(a.screen, a.frame, m, a.session.proc.Controls())
}

func (a *App) writeMeter() {
	if a.session.tel == nil {
		return
	}
	m := a.session.metrics.Snapshot()
	m.Peak = max(a.meterPeak, m.Peak)
	a.meterPeak = 0
	if err := a.session.tel.WriteMeter(m, a.frame.Tiles); err != nil {
		a.logger.Error("meter write failed", "error", err)
	}
}

func (a *App) run() {
	if err := a.initAudio(); err != nil {
		// Non-fatal, the lattice still renders
		a.logger.Warn("audio initialization failed", "error", err)
	}

	frameTicker := time.NewTicker(a.session.cfg.Render.FrameInterval())
	defer frameTicker.Stop()
	meterTicker := time.NewTicker(a.session.cfg.Telemetry.Interval())
	defer meterTicker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !a.handleInput(ev) {
				return
			}
		case <-meterTicker.C:
			a.writeMeter()
		case <-frameTicker.C:
			a.draw()
		}
	}
}

// cleanup is safe to call more than once
func (a *App) cleanup() {
	if a.audioInit {
		a.player.Close()
		a.audioInit = false
	}
	if a.screen != nil {
		a.screen.Fini()
		a.screen = nil
	}
}

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gopxl/beep"

	"github.com/thestrangeagency/HarmonicAnomalies/audio"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/status"
	"github.com/thestrangeagency/HarmonicAnomalies/telemetry"
)

// meterTap passes a stream through and appends a telemetry meter row every
// `every` samples
type meterTap struct {
	s       beep.Streamer
	lat     *lattice.Lattice
	metrics *status.Metrics
	tel     *telemetry.Writer
	every   int

	count int
	rows  int
	tiles []lattice.Tile
	err   error
}

func (t *meterTap) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = t.s.Stream(samples)
	t.count += n
	for t.err == nil && t.count >= t.every {
		t.count -= t.every
		t.tiles = t.lat.Snapshot(t.tiles)
		m := t.metrics.Snapshot()
		m.Peak = t.metrics.TakePeak()
		t.err = t.tel.WriteMeter(m, t.tiles)
		t.rows++
	}
	if t.err != nil {
		return n, false
	}
	return n, ok
}

func (t *meterTap) Err() error {
	if t.err != nil {
		return t.err
	}
	return t.s.Err()
}

// runOffline renders to a WAV file and/or drives the lattice for the
// requested time writing telemetry, without touching the terminal or speaker
func runOffline(o options, s *session, logger *slog.Logger) error {
	rate := beep.SampleRate(s.cfg.Audio.SampleRate)
	duration := o.duration()
	start := time.Now()

	var stream beep.Streamer = s.proc
	var tap *meterTap
	if s.tel != nil {
		tap = &meterTap{
			s:       s.proc,
			lat:     s.lat,
			metrics: s.metrics,
			tel:     s.tel,
			every:   max(rate.N(s.cfg.Telemetry.Interval()), 1),
		}
		stream = tap
	}
	stream = audio.NewVolume(stream, s.cfg.Audio.MasterVolume)

	if o.renderPath != "" {
		if err := audio.RenderFile(o.renderPath, stream, rate, duration); err != nil {
			return err
		}
	} else if err := drain(stream, rate.N(duration)); err != nil {
		return err
	}
	if tap != nil && tap.err != nil {
		return tap.err
	}

	if s.tel != nil {
		if err := s.tel.WriteCells(s.lat.Snapshot(nil)); err != nil {
			return err
		}
	}

	m := s.metrics.Snapshot()
	logger.Info("offline run complete",
		"ticks", m.Ticks,
		"overloads", m.Overloads,
		"render", o.renderPath,
		"dump", s.tel.Dir(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if rs := s.proc.ReadSync(); rs != nil {
		logger.Info("read sync", "syncs", rs.Syncs())
	}
	return nil
}

// drain pulls n samples from s and discards them
func drain(s beep.Streamer, n int) error {
	buf := make([][2]float64, 512)
	for n > 0 {
		got, ok := s.Stream(buf[:min(n, len(buf))])
		n -= got
		if !ok {
			if err := s.Err(); err != nil {
				return fmt.Errorf("stream ended early: %w", err)
			}
			return nil
		}
	}
	return nil
}

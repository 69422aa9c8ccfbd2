package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/gopxl/beep"

	"github.com/thestrangeagency/HarmonicAnomalies/audio"
	"github.com/thestrangeagency/HarmonicAnomalies/config"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/repeat"
	"github.com/thestrangeagency/HarmonicAnomalies/status"
	"github.com/thestrangeagency/HarmonicAnomalies/telemetry"
)

// options are the parsed command-line flags
type options struct {
	configPath string
	debug      bool
	logPath    string
	input      string
	loop       bool
	tone       float64
	renderPath string
	seconds    float64
	dumpDir    string
}

func (o options) offline() bool { return o.renderPath != "" || o.dumpDir != "" }

func (o options) duration() time.Duration {
	return time.Duration(o.seconds * float64(time.Second))
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("hexlattice", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	fs.BoolVar(&o.debug, "debug", false, "Write debug logs to -log")
	fs.StringVar(&o.logPath, "log", "hexlattice.log", "Debug log file")
	fs.StringVar(&o.input, "input", "", "WAV file fed into the lattice (empty = test tone)")
	fs.BoolVar(&o.loop, "loop", true, "Loop the -input file")
	fs.Float64Var(&o.tone, "tone", -1, "Test tone frequency in Hz (-1 = use config, 0 = silent)")
	fs.StringVar(&o.renderPath, "render", "", "Render offline to this WAV file instead of playing")
	fs.Float64Var(&o.seconds, "seconds", 10, "Offline run length in seconds")
	fs.StringVar(&o.dumpDir, "dump", "", "Directory for CSV telemetry (cells.csv, meter.csv)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.offline() && o.seconds <= 0 {
		return o, fmt.Errorf("-seconds must be positive, got %v", o.seconds)
	}
	return o, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger keeps log output off the terminal owned by tcell
// Offline runs log to stderr; interactive runs log to a file only with -debug
func newLogger(o options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if o.debug {
		f, err := os.OpenFile(o.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), f, nil
	}
	if o.offline() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nopCloser{}, nil
	}
	return slog.New(slog.NewTextHandler(io.Discard, opts)), nopCloser{}, nil
}

// session is everything built from config before a run starts
type session struct {
	cfg     *config.Config
	lat     *lattice.Lattice
	proc    *audio.Processor
	metrics *status.Metrics
	tel     *telemetry.Writer
	input   *audio.Input
	initial lattice.Controls
}

func newSession(o options, logger *slog.Logger) (*session, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.tone >= 0 {
		cfg.Audio.Tone = o.tone
	}
	if o.dumpDir != "" {
		cfg.Telemetry.Dir = o.dumpDir
	}

	lc, err := cfg.LatticeConfig()
	if err != nil {
		return nil, err
	}
	lat, err := lattice.New(lc)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, lat: lat, metrics: status.NewMetrics()}
	rate := beep.SampleRate(cfg.Audio.SampleRate)

	var src beep.Streamer
	switch {
	case o.input != "":
		s.input, err = audio.OpenWAV(o.input, rate, o.loop)
		if err != nil {
			return nil, err
		}
		src = s.input
		logger.Info("input opened", "path", o.input, "rate", int(s.input.Format.SampleRate), "loop", o.loop)
	case cfg.Audio.Tone > 0:
		wave, err := audio.ParseWave(cfg.Audio.Wave)
		if err != nil {
			return nil, err
		}
		src = audio.NewOscillator(cfg.Audio.Tone, cfg.Audio.ToneLevel, wave, rate)
		logger.Info("test tone", "freq", cfg.Audio.Tone, "wave", wave.String())
	}

	s.proc, err = audio.NewProcessor(lat, src, s.metrics)
	if err != nil {
		s.close()
		return nil, err
	}
	s.initial = cfg.InitialControls()
	s.proc.SetControls(s.initial)
	if cfg.Repeat.Enabled {
		rep := repeat.New(cfg.Repeat.Params())
		s.proc.SetReadSync(audio.NewReadSync(rep, rate))
		logger.Info("read sync", "period", rep.Params().Period, "repeat", rep.Params().Repeat)
	}

	s.tel, err = telemetry.NewWriter(cfg.Telemetry.Dir, lat.Layout())
	if err != nil {
		s.close()
		return nil, err
	}
	if err := s.tel.WriteConfig(cfg); err != nil {
		s.close()
		return nil, err
	}

	logger.Info("lattice ready",
		"radius", lc.Radius,
		"cells", lat.Length(),
		"storage", lat.StorageKind().String(),
		"sample_rate", cfg.Audio.SampleRate,
	)
	return s, nil
}

func (s *session) close() {
	if s.input != nil {
		s.input.Close()
		s.input = nil
	}
	if s.tel != nil {
		s.tel.Close()
		s.tel = nil
	}
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logger, logFile, err := newLogger(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	s, err := newSession(o, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer s.close()

	if o.offline() {
		if err := runOffline(o, s, logger); err != nil {
			logger.Error("offline run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	app, err := NewApp(s, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize terminal: %v\n", err)
		os.Exit(1)
	}

	// Panic Recovery: Ensure terminal is reset even if the render loop crashes
	defer func() {
		if r := recover(); r != nil {
			app.cleanup()
			fmt.Fprintf(os.Stderr, "\n\x1b[31mHEXLATTICE CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	app.run()
	app.cleanup()
}

// Package config loads the hexlattice configuration: embedded YAML defaults,
// an optional user YAML file and HEXLATTICE_* environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thestrangeagency/HarmonicAnomalies/hex"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/repeat"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every Validate failure
var ErrInvalid = errors.New("invalid config")

// Environment overrides
const (
	EnvRadius       = "HEXLATTICE_RADIUS"
	EnvStorage      = "HEXLATTICE_STORAGE"
	EnvSampleRate   = "HEXLATTICE_SAMPLE_RATE"
	EnvMasterVolume = "HEXLATTICE_MASTER_VOLUME" // 0..100
)

// Config is the full application configuration
type Config struct {
	Lattice   LatticeConfig   `yaml:"lattice"`
	Audio     AudioConfig     `yaml:"audio"`
	Render    RenderConfig    `yaml:"render"`
	Controls  ControlsConfig  `yaml:"controls"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Repeat    RepeatConfig    `yaml:"repeat"`
}

type LatticeConfig struct {
	Radius        int     `yaml:"radius"`
	Storage       string  `yaml:"storage"`
	GrainSize     int     `yaml:"grain_size"`
	MeterSize     int     `yaml:"meter_size"`
	MaxRingRadius int     `yaml:"max_ring_radius"`
	DecayFactor   float64 `yaml:"decay_factor"`
	CellSize      float64 `yaml:"cell_size"`
}

type AudioConfig struct {
	SampleRate   int     `yaml:"sample_rate"`
	MasterVolume float64 `yaml:"master_volume"`
	BufferMS     int     `yaml:"buffer_ms"`
	Tone         float64 `yaml:"tone"`
	Wave         string  `yaml:"wave"`
	ToneLevel    float64 `yaml:"tone_level"`
}

// Buffer returns the speaker buffer length
func (a AudioConfig) Buffer() time.Duration {
	return time.Duration(a.BufferMS) * time.Millisecond
}

type RenderConfig struct {
	FPS int `yaml:"fps"`
}

// FrameInterval returns the render ticker period
func (r RenderConfig) FrameInterval() time.Duration {
	if r.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(r.FPS)
}

// ControlsConfig holds the initial lattice controls
type ControlsConfig struct {
	WriteDelta     []float64 `yaml:"write_delta"`
	ReadDelta      []float64 `yaml:"read_delta"`
	Blend          float64   `yaml:"blend"`
	WriteMode      float64   `yaml:"write_mode"`
	ReadMode       float64   `yaml:"read_mode"`
	WriteMaxRadius float64   `yaml:"write_max_radius"`
	ReadMaxRadius  float64   `yaml:"read_max_radius"`
	Crop           float64   `yaml:"crop"`
	RingRadius     int       `yaml:"ring_radius"`
}

type TelemetryConfig struct {
	Dir        string `yaml:"dir"`
	IntervalMS int    `yaml:"interval_ms"`
}

// Interval returns the meter row period
func (t TelemetryConfig) Interval() time.Duration {
	return time.Duration(t.IntervalMS) * time.Millisecond
}

// RepeatConfig drives the read sync repeater; counts are clamped, not validated
type RepeatConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Period      float64 `yaml:"period"`
	Repeat      float64 `yaml:"repeat"`
	ResetPeriod float64 `yaml:"reset_period"`
	Through     bool    `yaml:"through"`
}

// Params converts the section into repeater parameters
func (r RepeatConfig) Params() repeat.Params {
	return repeat.Params{
		Period:      r.Period,
		Repeat:      r.Repeat,
		ResetPeriod: r.ResetPeriod,
		Through:     r.Through,
	}
}

// Default returns the embedded defaults
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// then applies environment overrides. If path is empty, only the defaults
// and environment are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv reads HEXLATTICE_* overrides; malformed numbers are errors
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvRadius); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRadius, err)
		}
		c.Lattice.Radius = n
	}

	if v := os.Getenv(EnvStorage); v != "" {
		c.Lattice.Storage = v
	}

	if v := os.Getenv(EnvSampleRate); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSampleRate, err)
		}
		c.Audio.SampleRate = n
	}

	// 0-100 converted to 0.0-1.0
	if v := os.Getenv(EnvMasterVolume); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMasterVolume, err)
		}
		c.Audio.MasterVolume = min(max(float64(n)/100.0, 0), 1)
	}
	return nil
}

// Validate checks ranges that would otherwise fail deep inside the audio path
func (c *Config) Validate() error {
	if _, err := c.LatticeConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalid, c.Audio.SampleRate)
	}
	if c.Audio.MasterVolume < 0 || c.Audio.MasterVolume > 1 {
		return fmt.Errorf("%w: master_volume must be in [0, 1], got %v", ErrInvalid, c.Audio.MasterVolume)
	}
	if c.Audio.BufferMS <= 0 {
		return fmt.Errorf("%w: buffer_ms must be positive, got %d", ErrInvalid, c.Audio.BufferMS)
	}
	if c.Render.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.Render.FPS)
	}
	for name, v := range map[string][]float64{
		"write_delta": c.Controls.WriteDelta,
		"read_delta":  c.Controls.ReadDelta,
	} {
		if len(v) != 0 && len(v) != 3 {
			return fmt.Errorf("%w: %s needs 3 components, got %d", ErrInvalid, name, len(v))
		}
	}
	if c.Telemetry.IntervalMS <= 0 {
		return fmt.Errorf("%w: interval_ms must be positive, got %d", ErrInvalid, c.Telemetry.IntervalMS)
	}
	return nil
}

// LatticeConfig converts the lattice section into a lattice.Config
func (c *Config) LatticeConfig() (lattice.Config, error) {
	kind, err := lattice.ParseStorageKind(c.Lattice.Storage)
	if err != nil {
		return lattice.Config{}, err
	}
	lc := lattice.Config{
		Radius:        c.Lattice.Radius,
		Storage:       kind,
		GrainSize:     c.Lattice.GrainSize,
		MeterSize:     c.Lattice.MeterSize,
		MaxRingRadius: c.Lattice.MaxRingRadius,
		DecayFactor:   c.Lattice.DecayFactor,
		CellSize:      c.Lattice.CellSize,
	}
	if err := lc.Validate(); err != nil {
		return lattice.Config{}, err
	}
	return lc, nil
}

// InitialControls converts the controls section into lattice.Controls
func (c *Config) InitialControls() lattice.Controls {
	lc := lattice.DefaultControls()
	lc.WriteDelta = vec(c.Controls.WriteDelta)
	lc.ReadDelta = vec(c.Controls.ReadDelta)
	lc.Blend = c.Controls.Blend
	lc.WriteMode = c.Controls.WriteMode
	lc.ReadMode = c.Controls.ReadMode
	lc.WriteMaxRadius = c.Controls.WriteMaxRadius
	lc.ReadMaxRadius = c.Controls.ReadMaxRadius
	lc.Crop = c.Controls.Crop
	lc.RingRadius = c.Controls.RingRadius
	return lc
}

func vec(v []float64) hex.Vec3 {
	if len(v) != 3 {
		return hex.Vec3{}
	}
	return hex.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

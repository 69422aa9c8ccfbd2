package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/thestrangeagency/HarmonicAnomalies/hex"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/status"
)

func newTestLattice(t *testing.T, radius int) *lattice.Lattice {
	t.Helper()
	cfg := lattice.DefaultConfig()
	cfg.Radius = radius
	l, err := lattice.New(cfg)
	if err != nil {
		t.Fatalf("lattice.New failed: %v", err)
	}
	return l
}

// TestOscillatorSine verifies sine wave generation
func TestOscillatorSine(t *testing.T) {
	osc := NewOscillator(440, 1, WaveSine, beep.SampleRate(44100))

	samples := make([][2]float64, 100)
	n, ok := osc.Stream(samples)
	if !ok || n != 100 {
		t.Fatalf("Expected 100 samples and ok, got %d %v", n, ok)
	}
	for i := 0; i < n; i++ {
		if samples[i][0] < -1.0 || samples[i][0] > 1.0 || samples[i][0] != samples[i][1] {
			t.Errorf("Sample %d out of range or unbalanced: %v", i, samples[i])
		}
	}
	if osc.Err() != nil {
		t.Errorf("Expected no error, got: %v", osc.Err())
	}
}

// TestOscillatorSquareAmplitude verifies amplitude scaling
func TestOscillatorSquareAmplitude(t *testing.T) {
	osc := NewOscillator(220, 0.25, WaveSquare, beep.SampleRate(44100))
	samples := make([][2]float64, 400)
	osc.Stream(samples)
	for i, s := range samples {
		if s[0] != 0.25 && s[0] != -0.25 {
			t.Errorf("Square sample %d should be ±0.25, got %f", i, s[0])
		}
	}
}

// TestOscillatorNeverEnds verifies test tones are infinite
func TestOscillatorNeverEnds(t *testing.T) {
	osc := NewOscillator(110, 1, WaveSaw, beep.SampleRate(8000))
	samples := make([][2]float64, 8000)
	for i := 0; i < 3; i++ {
		if n, ok := osc.Stream(samples); !ok || n != len(samples) {
			t.Fatalf("pass %d: expected full buffer, got %d %v", i, n, ok)
		}
	}
}

// TestOscillatorNoise verifies noise generation varies
func TestOscillatorNoise(t *testing.T) {
	osc := NewOscillator(0, 1, WaveNoise, beep.SampleRate(44100))
	samples := make([][2]float64, 50)
	osc.Stream(samples)

	allSame := true
	for i := 1; i < len(samples); i++ {
		if samples[i][0] < -1 || samples[i][0] > 1 {
			t.Errorf("Noise sample %d out of range: %f", i, samples[i][0])
		}
		if samples[i][0] != samples[0][0] {
			allSame = false
		}
	}
	if allSame {
		t.Error("Expected noise samples to vary, but all were the same")
	}
}

func TestParseWave(t *testing.T) {
	tests := []struct {
		in      string
		want    WaveType
		wantErr bool
	}{
		{"", WaveSine, false},
		{"Sine", WaveSine, false},
		{"square", WaveSquare, false},
		{" saw", WaveSaw, false},
		{"noise", WaveNoise, false},
		{"triangle", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseWave(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWave(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownWave) {
			t.Errorf("Expected ErrUnknownWave, got %v", err)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseWave(%q) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

// TestNewVolume verifies unity and silent gain
func TestNewVolume(t *testing.T) {
	rate := beep.SampleRate(44100)

	unity := NewVolume(NewOscillator(100, 0.5, WaveSquare, rate), 1)
	samples := make([][2]float64, 10)
	unity.Stream(samples)
	if samples[0][0] != 0.5 {
		t.Errorf("Expected unity gain to keep 0.5, got %v", samples[0][0])
	}

	silent := NewVolume(NewOscillator(100, 0.5, WaveSquare, rate), 0)
	n, ok := silent.Stream(samples)
	if !ok || n == 0 {
		t.Fatal("Expected silent volume to keep streaming")
	}
	for i := 0; i < n; i++ {
		if samples[i][0] != 0 {
			t.Fatalf("Expected silence, got %v at %d", samples[i][0], i)
		}
	}
}

func TestNewProcessorRequiresLattice(t *testing.T) {
	if _, err := NewProcessor(nil, nil, nil); !errors.Is(err, ErrNoLattice) {
		t.Errorf("Expected ErrNoLattice, got %v", err)
	}
}

// TestProcessorPassThrough checks that co-located cursors return the input
func TestProcessorPassThrough(t *testing.T) {
	rate := beep.SampleRate(44100)
	l := newTestLattice(t, 4)
	m := status.NewMetrics()
	p, err := NewProcessor(l, NewOscillator(441, 0.5, WaveSquare, rate), m)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}

	want := make([][2]float64, 64)
	NewOscillator(441, 0.5, WaveSquare, rate).Stream(want)

	got := make([][2]float64, 64)
	n, ok := p.Stream(got)
	if !ok || n != 64 {
		t.Fatalf("Expected 64 samples and ok, got %d %v", n, ok)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if l.Ticks() != 64 || m.Ticks.Load() != 64 {
		t.Errorf("Expected 64 ticks, got lattice %d metrics %d", l.Ticks(), m.Ticks.Load())
	}
	if m.Peak.Get() != 0.5 {
		t.Errorf("Expected peak 0.5, got %v", m.Peak.Get())
	}
}

// TestProcessorOutlivesSource checks the tail after the input ends
func TestProcessorOutlivesSource(t *testing.T) {
	rate := beep.SampleRate(8000)
	l := newTestLattice(t, 4)
	p, _ := NewProcessor(l, beep.Take(10, NewOscillator(100, 0.5, WaveSquare, rate)), nil)

	samples := make([][2]float64, 32)
	n, ok := p.Stream(samples)
	if !ok || n != 32 {
		t.Fatalf("Expected full buffer after source end, got %d %v", n, ok)
	}
	if samples[9][0] != 0.5 || samples[10][0] != 0 {
		t.Errorf("Expected source then silence at sample 10, got %v %v", samples[9][0], samples[10][0])
	}
	if p.Err() != nil {
		t.Errorf("Expected clean source end, got %v", p.Err())
	}
	if n, ok := p.Stream(samples); !ok || n != 32 {
		t.Errorf("Expected processor to keep streaming, got %d %v", n, ok)
	}
}

func TestProcessorControls(t *testing.T) {
	l := newTestLattice(t, 4)
	p, _ := NewProcessor(l, nil, nil)

	if p.Controls() != lattice.DefaultControls() {
		t.Error("Expected default controls on a new processor")
	}
	p.Update(func(c *lattice.Controls) {
		c.WriteDelta = hex.Vec3{X: 1}
		c.RingRadius = 2
	})
	c := p.Controls()
	if c.WriteDelta.X != 1 || c.RingRadius != 2 {
		t.Errorf("Expected updated controls, got %+v", c)
	}

	p.Stream(make([][2]float64, 5))
	if l.WriteIndex() != 5 || l.RingRadius() != 2 {
		t.Errorf("Expected write index 5 and ring radius 2, got %d %d", l.WriteIndex(), l.RingRadius())
	}

	p.SetControls(lattice.DefaultControls())
	if p.Controls().RingRadius != 0 {
		t.Error("Expected SetControls to replace controls")
	}
}

func TestRenderAndDecodeWAV(t *testing.T) {
	rate := beep.SampleRate(8000)
	path := filepath.Join(t.TempDir(), "out.wav")

	l := newTestLattice(t, 4)
	p, _ := NewProcessor(l, NewOscillator(200, 0.5, WaveSine, rate), nil)
	if err := RenderFile(path, p, rate, 100*time.Millisecond); err != nil {
		t.Fatalf("RenderFile failed: %v", err)
	}

	in, err := OpenWAV(path, rate, false)
	if err != nil {
		t.Fatalf("OpenWAV failed: %v", err)
	}
	defer in.Close()

	if in.Format.SampleRate != rate || in.Format.NumChannels != 2 {
		t.Errorf("Expected 8000 Hz stereo, got %+v", in.Format)
	}
	if total := drain(in); total != rate.N(100*time.Millisecond) {
		t.Errorf("Expected %d samples, got %d", rate.N(100*time.Millisecond), total)
	}
}

func TestOpenWAVResamples(t *testing.T) {
	rate := beep.SampleRate(8000)
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := RenderFile(path, NewOscillator(200, 0.5, WaveSine, rate), rate, 50*time.Millisecond); err != nil {
		t.Fatalf("RenderFile failed: %v", err)
	}

	in, err := OpenWAV(path, 16000, false)
	if err != nil {
		t.Fatalf("OpenWAV failed: %v", err)
	}
	defer in.Close()
	if in.Format.SampleRate != rate {
		t.Errorf("Expected source format to report 8000 Hz, got %v", in.Format.SampleRate)
	}
	if total := drain(in); total < 700 {
		t.Errorf("Expected roughly doubled sample count, got %d", total)
	}
}

func TestOpenWAVErrors(t *testing.T) {
	if _, err := OpenWAV(filepath.Join(t.TempDir(), "missing.wav"), 8000, false); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(bad, []byte("not a wav file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenWAV(bad, 8000, false); err == nil {
		t.Error("Expected decode error for garbage input")
	}
}

func drain(s beep.Streamer) int {
	buf := make([][2]float64, 256)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

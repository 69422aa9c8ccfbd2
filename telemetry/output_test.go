package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/thestrangeagency/HarmonicAnomalies/config"
	"github.com/thestrangeagency/HarmonicAnomalies/hex"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/status"
)

func newLayout(t *testing.T, radius int) hex.Layout {
	t.Helper()
	g, err := hex.NewGeometry(radius)
	if err != nil {
		t.Fatalf("NewGeometry failed: %v", err)
	}
	return hex.NewLayout(g, 0)
}

func TestNewWriterDisabled(t *testing.T) {
	w, err := NewWriter("", newLayout(t, 2))
	if err != nil || w != nil {
		t.Fatalf("Expected nil writer for empty dir, got %v %v", w, err)
	}
	// nil writer is a no-op
	if err := w.WriteCells(nil); err != nil {
		t.Errorf("Expected nil error from disabled writer, got %v", err)
	}
	if err := w.WriteMeter(status.Sample{}, nil); err != nil {
		t.Errorf("Expected nil error from disabled writer, got %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Expected nil error from disabled writer, got %v", err)
	}
}

func TestWriteCells(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	layout := newLayout(t, 2)
	w, err := NewWriter(dir, layout)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	defer w.Close()

	tiles := make([]lattice.Tile, layout.Length)
	tiles[3] = lattice.Tile{V: 0.25, Writ: 1, Read: 0.75}
	if err := w.WriteCells(tiles); err != nil {
		t.Fatalf("WriteCells failed: %v", err)
	}

	var records []CellRecord
	f, err := os.Open(filepath.Join(dir, CellsFile))
	if err != nil {
		t.Fatalf("open cells: %v", err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		t.Fatalf("unmarshal cells: %v", err)
	}
	if len(records) != layout.Length {
		t.Fatalf("Expected %d rows, got %d", layout.Length, len(records))
	}
	r := records[3]
	c := layout.ToCoords(3)
	if r.Index != 3 || r.X != c.X || r.Y != c.Y || r.Z != c.Z {
		t.Errorf("Expected cell 3 at %+v, got %+v", c, r)
	}
	if r.V != 0.25 || r.Writ != 1 || r.Read != 0.75 {
		t.Errorf("Expected tile values kept, got %+v", r)
	}
	if p := layout.PositionAt(3); math.Abs(r.PX-p.X) > 1e-9 || math.Abs(r.PY-p.Y) > 1e-9 {
		t.Errorf("Expected position %+v, got (%v, %v)", p, r.PX, r.PY)
	}
}

func TestWriteMeterHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, newLayout(t, 2))
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	tiles := []lattice.Tile{{V: 0.5}, {V: -1}, {V: 0}}
	for i := 0; i < 3; i++ {
		m := status.Sample{Ticks: uint64(i * 100), Output: 0.1}
		if err := w.WriteMeter(m, tiles); err != nil {
			t.Fatalf("WriteMeter %d failed: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, MeterFile))
	if err != nil {
		t.Fatalf("read meter: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "tick,") || strings.Count(string(data), "tick,") != 1 {
		t.Errorf("Expected a single header line, got %q", lines[0])
	}

	var records []MeterRecord
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		t.Fatalf("unmarshal meter: %v", err)
	}
	if records[2].Tick != 200 || math.Abs(records[2].Energy-1.25) > 1e-12 || records[2].MaxLevel != 1 {
		t.Errorf("Expected tick 200, energy 1.25, max 1, got %+v", records[2])
	}
}

func TestSummarize(t *testing.T) {
	w := &Writer{}
	s := w.Summarize([]lattice.Tile{{V: 0.5}, {V: -0.5}, {V: 1}, {V: 0}})
	if math.Abs(s.Energy-1.5) > 1e-12 {
		t.Errorf("Expected energy 1.5, got %v", s.Energy)
	}
	if math.Abs(s.MeanLevel-0.5) > 1e-12 {
		t.Errorf("Expected mean level 0.5, got %v", s.MeanLevel)
	}
	if s.MaxLevel != 1 {
		t.Errorf("Expected max level 1, got %v", s.MaxLevel)
	}
	if (w.Summarize(nil) != Summary{}) {
		t.Error("Expected zero summary for no tiles")
	}
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, newLayout(t, 2))
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	defer w.Close()

	cfg := config.Default()
	cfg.Lattice.Radius = 5
	if err := w.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	loaded, err := config.Load(filepath.Join(dir, ConfigFile))
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if loaded.Lattice.Radius != 5 {
		t.Errorf("Expected radius 5, got %d", loaded.Lattice.Radius)
	}
}

// Package telemetry writes lattice state to CSV for offline analysis:
// full cell snapshots and a running meter of output and cell energy.
package telemetry

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"

	"github.com/thestrangeagency/HarmonicAnomalies/config"
	"github.com/thestrangeagency/HarmonicAnomalies/hex"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/status"
)

// Output file names
const (
	CellsFile  = "cells.csv"
	MeterFile  = "meter.csv"
	ConfigFile = "config.yaml"
)

// CellRecord is one row of cells.csv
type CellRecord struct {
	Index int     `csv:"index"`
	X     int     `csv:"x"`
	Y     int     `csv:"y"`
	Z     int     `csv:"z"`
	PX    float64 `csv:"px"`
	PY    float64 `csv:"py"`
	V     float64 `csv:"value"`
	Writ  float64 `csv:"writ"`
	Read  float64 `csv:"read"`
}

// MeterRecord is one row of meter.csv
type MeterRecord struct {
	Tick       uint64  `csv:"tick"`
	WriteIndex int     `csv:"write_index"`
	ReadIndex  int     `csv:"read_index"`
	RingRadius int     `csv:"ring_radius"`
	Output     float64 `csv:"output"`
	Peak       float64 `csv:"peak"`
	Overloads  uint64  `csv:"overloads"`
	Energy     float64 `csv:"energy"`     // Sum of squared cell values
	MeanLevel  float64 `csv:"mean_level"` // Mean |V| over all cells
	MaxLevel   float64 `csv:"max_level"`  // Largest |V|
}

// Summary is the energy digest of one tile snapshot
type Summary struct {
	Energy    float64
	MeanLevel float64
	MaxLevel  float64
}

// Writer handles CSV output for one run directory
type Writer struct {
	dir       string
	layout    hex.Layout
	meterFile *os.File

	// Track if headers have been written
	meterHeaderWritten bool

	values []float64
	levels []float64
}

// NewWriter creates the output directory and opens meter.csv
// Returns nil if dir is empty (output disabled); a nil Writer ignores all writes
func NewWriter(dir string, layout hex.Layout) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, MeterFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", MeterFile, err)
	}
	return &Writer{dir: dir, layout: layout, meterFile: f}, nil
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// WriteConfig saves the run configuration as YAML
func (w *Writer) WriteConfig(cfg *config.Config) error {
	if w == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(w.dir, ConfigFile))
}

// WriteCells replaces cells.csv with a snapshot of tiles
func (w *Writer) WriteCells(tiles []lattice.Tile) error {
	if w == nil {
		return nil
	}
	records := make([]CellRecord, len(tiles))
	for i, t := range tiles {
		c := w.layout.ToCoords(i)
		p := w.layout.Position(c)
		records[i] = CellRecord{
			Index: i,
			X:     c.X, Y: c.Y, Z: c.Z,
			PX: p.X, PY: p.Y,
			V: t.V, Writ: t.Writ, Read: t.Read,
		}
	}

	f, err := os.Create(filepath.Join(w.dir, CellsFile))
	if err != nil {
		return fmt.Errorf("creating %s: %w", CellsFile, err)
	}
	if err := gocsv.Marshal(records, f); err != nil {
		f.Close()
		return fmt.Errorf("writing cells: %w", err)
	}
	return f.Close()
}

// WriteMeter appends a meter row built from metrics and a tile snapshot
func (w *Writer) WriteMeter(m status.Sample, tiles []lattice.Tile) error {
	if w == nil {
		return nil
	}
	s := w.Summarize(tiles)
	records := []MeterRecord{{
		Tick:       m.Ticks,
		WriteIndex: m.WriteIndex,
		ReadIndex:  m.ReadIndex,
		RingRadius: m.RingRadius,
		Output:     m.Output,
		Peak:       m.Peak,
		Overloads:  m.Overloads,
		Energy:     s.Energy,
		MeanLevel:  s.MeanLevel,
		MaxLevel:   s.MaxLevel,
	}}

	if !w.meterHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, w.meterFile); err != nil {
			return fmt.Errorf("writing meter: %w", err)
		}
		w.meterHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, w.meterFile); err != nil {
			return fmt.Errorf("writing meter: %w", err)
		}
	}
	return nil
}

// Summarize computes the energy digest of tiles, reusing internal scratch
func (w *Writer) Summarize(tiles []lattice.Tile) Summary {
	if len(tiles) == 0 {
		return Summary{}
	}
	w.values = w.values[:0]
	w.levels = w.levels[:0]
	for _, t := range tiles {
		w.values = append(w.values, t.V)
		w.levels = append(w.levels, math.Abs(t.V))
	}
	return Summary{
		Energy:    floats.Dot(w.values, w.values),
		MeanLevel: floats.Sum(w.levels) / float64(len(w.levels)),
		MaxLevel:  floats.Max(w.levels),
	}
}

// Close flushes and closes meter.csv
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	return w.meterFile.Close()
}

package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
)

// RGB color definitions
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbStatusBar  = tcell.NewRGBColor(255, 255, 255) // White
	RgbStatusText = tcell.NewRGBColor(0, 0, 0)       // Dark text for status
	RgbCellGlyph  = tcell.NewRGBColor(180, 180, 180) // Brighter gray

	RgbWriteCursor = tcell.NewRGBColor(255, 80, 80)   // Normal Red
	RgbReadCursor  = tcell.NewRGBColor(50, 255, 50)   // Bright Green
	RgbRingCell    = tcell.NewRGBColor(255, 255, 0)   // Bright Yellow
	RgbCropped     = tcell.NewRGBColor(60, 60, 60)    // Dim gray outside the active region
	RgbOverload    = tcell.NewRGBColor(255, 165, 0)   // Orange for clipped output
	RgbLevelHigh   = tcell.NewRGBColor(140, 190, 255) // Bright Blue
)

// Glow gains for the write and read activity flags
const (
	writeGlow = 200.0
	readGlow  = 200.0
)

// CellColor returns the background of a tile: level blended from the
// background toward blue, plus red write glow and green read glow
func CellColor(t lattice.Tile) tcell.Color {
	level := math.Min(math.Abs(t.V), 1)
	if level != level {
		level = 0
	}
	br, bg, bb := RgbBackground.RGB()
	hr, hg, hb := RgbLevelHigh.RGB()

	r := lerp(br, hr, level) + writeGlow*t.Writ
	g := lerp(bg, hg, level) + readGlow*t.Read
	b := lerp(bb, hb, level)
	return tcell.NewRGBColor(clamp(r), clamp(g), clamp(b))
}

// GetLevelColor returns the color for a position in the output meter gradient
// progress is 0.0 to 1.0; values above 1 are drawn as overload
func GetLevelColor(progress float64) tcell.Color {
	if progress <= 0.0 {
		return tcell.NewRGBColor(0, 0, 0) // Black for unfilled
	}
	if progress > 1.0 {
		return RgbOverload
	}

	// green → yellow → red
	if progress < 0.5 {
		t := progress / 0.5
		return tcell.NewRGBColor(clamp(255*t), 200, 0)
	}
	t := (progress - 0.5) / 0.5
	return tcell.NewRGBColor(255, clamp(200*(1-t)), 0)
}

func lerp(a, b int32, t float64) float64 {
	return float64(a) + (float64(b)-float64(a))*t
}

// clamp converts a channel value to the tcell range
func clamp(v float64) int32 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return int32(v)
}

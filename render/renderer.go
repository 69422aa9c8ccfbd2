// Package render draws lattice frames onto a tcell screen: one terminal cell
// per hex tile, cursor and ring overlays, and a status line.
package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/thestrangeagency/HarmonicAnomalies/hex"
	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
	"github.com/thestrangeagency/HarmonicAnomalies/status"
)

// Glyphs
const (
	GlyphCell    = 'o'
	GlyphCropped = '·'
	GlyphWrite   = 'W'
	GlyphRead    = 'R'
	GlyphBoth    = 'X'
	GlyphRing    = '*'
)

// meterWidth is the number of status line cells used by the output meter
const meterWidth = 10

type screenPos struct {
	x, y int
}

// Renderer maps tile display positions onto terminal cells
// Not safe for concurrent use; call from the render goroutine only
type Renderer struct {
	layout        hex.Layout
	width, height int
	cells         []screenPos
}

// NewRenderer creates a renderer for layout; call Resize before drawing
func NewRenderer(layout hex.Layout) *Renderer {
	return &Renderer{
		layout: layout,
		cells:  make([]screenPos, layout.Length),
	}
}

// Resize rebuilds the tile-to-terminal map for a w×h screen
// The bottom row is reserved for the status line
func (r *Renderer) Resize(w, h int) {
	r.width, r.height = w, h
	cols := float64(max(w-1, 0))
	rows := float64(max(h-2, 0))
	for i := range r.cells {
		p := r.layout.PositionAt(i)
		r.cells[i] = screenPos{
			x: int(math.Round(p.X / r.layout.Width * cols)),
			y: int(math.Round(p.Y / r.layout.Height * rows)),
		}
	}
}

// CellAt returns the terminal position of tile i
func (r *Renderer) CellAt(i int) (x, y int) {
	p := r.cells[hex.Wrap(i, len(r.cells))]
	return p.x, p.y
}

// Draw renders one frame and shows it
func (r *Renderer) Draw(s tcell.Screen, f lattice.Frame, m status.Sample, c lattice.Controls) {
	if w, h := s.Size(); w != r.width || h != r.height {
		r.Resize(w, h)
	}
	s.Fill(' ', tcell.StyleDefault.Background(RgbBackground))

	active := max(f.WriteLength, f.ReadLength)
	for i, t := range f.Tiles {
		x, y := r.CellAt(i)
		style := tcell.StyleDefault.Background(CellColor(t)).Foreground(RgbCellGlyph)
		glyph := GlyphCell
		if i >= active {
			style = style.Foreground(RgbCropped)
			glyph = GlyphCropped
		}
		s.SetContent(x, y, glyph, nil, style)
	}

	for _, cell := range f.RingCells {
		r.mark(s, f, cell, GlyphRing, RgbRingCell)
	}
	if f.WriteIndex == f.ReadIndex {
		r.mark(s, f, f.WriteIndex, GlyphBoth, RgbRingCell)
	} else {
		r.mark(s, f, f.WriteIndex, GlyphWrite, RgbWriteCursor)
		r.mark(s, f, f.ReadIndex, GlyphRead, RgbReadCursor)
	}

	r.drawStatus(s, f, m, c)
	s.Show()
}

// mark draws an overlay glyph over tile i keeping its background
func (r *Renderer) mark(s tcell.Screen, f lattice.Frame, i int, glyph rune, fg tcell.Color) {
	x, y := r.CellAt(i)
	bg := RgbBackground
	if i >= 0 && i < len(f.Tiles) {
		bg = CellColor(f.Tiles[i])
	}
	s.SetContent(x, y, glyph, nil, tcell.StyleDefault.Background(bg).Foreground(fg).Bold(true))
}

// StatusLine formats the status bar text
func StatusLine(f lattice.Frame, m status.Sample, c lattice.Controls) string {
	return fmt.Sprintf(" W%d %s R%d %s ring %d area %d/%d blend %.2f out %+.3f pk %.3f clip %d ",
		f.WriteIndex, f.WriteMode, f.ReadIndex, f.ReadMode,
		f.RingRadius, f.ReadLength, len(f.Tiles), c.Blend,
		m.Output, m.Peak, m.Overloads)
}

func (r *Renderer) drawStatus(s tcell.Screen, f lattice.Frame, m status.Sample, c lattice.Controls) {
	if r.height < 1 {
		return
	}
	y := r.height - 1
	style := tcell.StyleDefault.Background(RgbStatusBar).Foreground(RgbStatusText)
	for x := 0; x < r.width; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
	x := drawText(s, 0, y, r.width, StatusLine(f, m, c), style)

	// Output meter
	for i := 0; i < meterWidth && x < r.width; i++ {
		threshold := float64(i+1) / meterWidth
		color := RgbStatusBar
		if m.Peak >= threshold {
			color = GetLevelColor(threshold)
			if m.Peak > 1 && i == meterWidth-1 {
				color = RgbOverload
			}
		}
		s.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(color))
		x++
	}
}

// drawText writes text from x and returns the column after the last rune
func drawText(s tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	for _, ch := range text {
		if x >= width {
			break
		}
		s.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

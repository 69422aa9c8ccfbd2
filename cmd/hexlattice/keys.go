package main

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/thestrangeagency/HarmonicAnomalies/lattice"
)

// Control step sizes
const (
	deltaStep  = 0.25
	cropStep   = 0.1
	blendStep  = 0.1
	radiusStep = 0.1
)

// action is what a key asks the app to do beyond editing controls
type action int

const (
	actionNone action = iota
	actionQuit
	actionPause
	actionReset
	actionDump
)

// applyKey edits c for one key press and returns the app action
// maxRing bounds the ring radius
func applyKey(c *lattice.Controls, ev *tcell.EventKey, maxRing int) action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyLeft:
		c.WriteDelta.X -= deltaStep
		return actionNone
	case tcell.KeyRight:
		c.WriteDelta.X += deltaStep
		return actionNone
	case tcell.KeyDown:
		c.ReadDelta.X -= deltaStep
		return actionNone
	case tcell.KeyUp:
		c.ReadDelta.X += deltaStep
		return actionNone
	case tcell.KeyRune:
	default:
		return actionNone
	}

	switch ev.Rune() {
	case 'q':
		return actionQuit
	case ' ':
		return actionPause
	case '0':
		return actionReset
	case 'p':
		return actionDump

	// write delta
	case 'h':
		c.WriteDelta.X -= deltaStep
	case 'l':
		c.WriteDelta.X += deltaStep
	case 'j':
		c.WriteDelta.Y -= deltaStep
	case 'k':
		c.WriteDelta.Y += deltaStep
	case 'u':
		c.WriteDelta.Z -= deltaStep
	case 'i':
		c.WriteDelta.Z += deltaStep

	// read delta
	case 'H':
		c.ReadDelta.X -= deltaStep
	case 'L':
		c.ReadDelta.X += deltaStep
	case 'J':
		c.ReadDelta.Y -= deltaStep
	case 'K':
		c.ReadDelta.Y += deltaStep
	case 'U':
		c.ReadDelta.Z -= deltaStep
	case 'I':
		c.ReadDelta.Z += deltaStep

	case 'm':
		c.WriteMode = nextMode(c.WriteMode)
	case 'M':
		c.ReadMode = nextMode(c.ReadMode)

	case ',':
		c.WriteMaxRadius = step01(c.WriteMaxRadius, -radiusStep)
	case '.':
		c.WriteMaxRadius = step01(c.WriteMaxRadius, radiusStep)
	case '<':
		c.ReadMaxRadius = step01(c.ReadMaxRadius, -radiusStep)
	case '>':
		c.ReadMaxRadius = step01(c.ReadMaxRadius, radiusStep)

	case '[':
		c.Crop = step01(c.Crop, -cropStep)
	case ']':
		c.Crop = step01(c.Crop, cropStep)

	case '-':
		c.RingRadius = max(c.RingRadius-1, 0)
	case '=', '+':
		c.RingRadius = min(c.RingRadius+1, maxRing)

	case 'b':
		c.Blend = step01(c.Blend, -blendStep)
	case 'B':
		c.Blend = step01(c.Blend, blendStep)
	}
	return actionNone
}

func nextMode(v float64) float64 {
	return lattice.ModeFromValue(v).Next().Value()
}

// step01 adds d and clamps to [0, 1], rounding away float drift
func step01(v, d float64) float64 {
	v = math.Round((v+d)*1000) / 1000
	return math.Max(0, math.Min(1, v))
}

package engine

import (
	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/render"
	"github.com/lixenwraith/fireworks/timeline"
)

// gesture is the pointer drag in progress
type gesture uint8

const (
	gestureNone  gesture = iota
	gesturePlace         // Press on the sky, firework is created on release
	gestureScrub         // Press on the timeline bar
)

// SetLayout places the sky field and the timeline bar in screen cells
func (e *Engine) SetLayout(field, bar render.Rect) {
	e.field, e.bar = field, bar
}

func (e *Engine) widget() timeline.Widget {
	return timeline.Widget{X: float64(e.bar.X), Width: float64(e.bar.W)}
}

// PointerDown starts a gesture at cell (x, y)
func (e *Engine) PointerDown(x, y int) {
	switch {
	case e.bar.Contains(x, y):
		if !e.clock.Recording() {
			return
		}
		e.gesture = gestureScrub
		e.ScrubTo(e.widget().Fraction(float64(x)))
	case e.field.Contains(x, y):
		e.gesture = gesturePlace
		e.track(x, y)
	}
}

// PointerMove follows the pointer; hovering the sky updates the position readout
func (e *Engine) PointerMove(x, y int) {
	switch e.gesture {
	case gestureScrub:
		e.ScrubTo(e.widget().Fraction(float64(x)))
	default:
		if e.field.Contains(x, y) {
			e.track(x, y)
		}
	}
}

// PointerUp ends the gesture; a placement released over the sky creates a firework
func (e *Engine) PointerUp(x, y int) {
	g := e.gesture
	e.gesture = gestureNone

	switch g {
	case gestureScrub:
		e.EndScrub()
	case gesturePlace:
		if e.field.Contains(x, y) {
			e.CreateFirework(e.cellPosition(x, y))
		}
	}
}

// Dragging reports whether a placement or scrub is in progress
func (e *Engine) Dragging() bool {
	return e.gesture != gestureNone
}

func (e *Engine) track(x, y int) {
	e.pointer, e.hasPtr = e.cellPosition(x, y), true
}

// cellPosition converts a cell inside the field to percent coordinates
func (e *Engine) cellPosition(x, y int) projection.Normalized {
	nx, ny := projection.ScreenToNDC(x-e.field.X, y-e.field.Y, e.field.W, e.field.H)
	return clampPosition(projection.FromNDC(nx, ny))
}

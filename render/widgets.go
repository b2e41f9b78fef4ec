package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

// DrawText writes s starting at (x, y), clipped to maxW cells, and returns the cells used
func DrawText(screen tcell.Screen, x, y, maxW int, s string, style tcell.Style) int {
	n := 0
	for _, r := range s {
		if n >= maxW {
			break
		}
		screen.SetContent(x+n, y, r, nil, style)
		n++
	}
	return n
}

// FillRow paints w cells of row y with spaces
func FillRow(screen tcell.Screen, x, y, w int, style tcell.Style) {
	for i := 0; i < w; i++ {
		screen.SetContent(x+i, y, ' ', nil, style)
	}
}

// TimelineView is what the scrub bar needs to draw itself
type TimelineView struct {
	Position float64   // ms
	Length   float64   // ms
	Markers  []float64 // explosion times in ms
	Active   bool      // recording mode, dimmed otherwise
}

// DrawTimeline draws the scrub bar into rect's first row
// Markers are diamonds, the playhead a full block
func DrawTimeline(screen tcell.Screen, rect Rect, view TimelineView) {
	if rect.Empty() {
		return
	}
	bar := RGBWidget
	if !view.Active {
		bar = bar.Scale(0.5)
	}
	base := tcell.StyleDefault.Background(RGBBlack.Tcell())
	track := base.Foreground(bar.Tcell())

	for i := 0; i < rect.W; i++ {
		screen.SetContent(rect.X+i, rect.Y, '─', nil, track)
	}
	if view.Length <= 0 {
		return
	}

	marker := base.Foreground(RGBMarker.Tcell())
	for _, m := range view.Markers {
		if x, ok := timelineCell(rect, m, view.Length); ok {
			screen.SetContent(x, rect.Y, '◆', nil, marker)
		}
	}
	if x, ok := timelineCell(rect, view.Position, view.Length); ok {
		screen.SetContent(x, rect.Y, '█', nil, base.Foreground(RGBPlayhead.Tcell()))
	}
}

func timelineCell(rect Rect, t, length float64) (int, bool) {
	if t < 0 || t > length {
		return 0, false
	}
	x := rect.X + int(math.Round(t/length*float64(rect.W-1)))
	return x, true
}

package render

import (
	"math"
	"time"
)

const (
	// AfterimageHalfLife is the time for a stamped cell to lose half its brightness
	AfterimageHalfLife = 90 * time.Millisecond
	// cells dimmer than this luma are cleared
	afterimageCutoff = 6
)

type glowCell struct {
	rune  rune
	color RGB
}

// Afterimage is a per-cell light buffer that fades exponentially with frame time
// Sparks stamp into it and leave short streaks on the terminal the way a long exposure would
type Afterimage struct {
	cells  []glowCell
	width  int
	height int
}

func NewAfterimage(width, height int) *Afterimage {
	a := &Afterimage{}
	a.Resize(width, height)
	return a
}

// Resize reallocates when capacity is short and always clears
func (a *Afterimage) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(a.cells) < size {
		a.cells = make([]glowCell, size)
	} else {
		a.cells = a.cells[:size]
	}
	a.width, a.height = width, height
	a.Reset()
}

func (a *Afterimage) Size() (int, int) {
	return a.width, a.height
}

// Reset drops every trace
func (a *Afterimage) Reset() {
	clear(a.cells)
}

// Decay fades the buffer by the elapsed frame time
func (a *Afterimage) Decay(dt time.Duration) {
	if dt <= 0 {
		return
	}
	factor := math.Pow(0.5, float64(dt)/float64(AfterimageHalfLife))
	for i := range a.cells {
		c := &a.cells[i]
		if c.rune == 0 {
			continue
		}
		c.color = c.color.Scale(factor)
		if c.color.Luma() < afterimageCutoff {
			*c = glowCell{}
		}
	}
}

// Stamp lights a cell, keeping the brightest channel of what was there
func (a *Afterimage) Stamp(x, y int, r rune, color RGB) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	c := &a.cells[y*a.width+x]
	if c.rune == 0 || color.Luma() >= c.color.Luma() {
		c.rune = r
	}
	c.color = c.color.Max(color)
}

// At returns the glyph and color at a cell, zero rune when dark
func (a *Afterimage) At(x, y int) (rune, RGB) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return 0, RGBBlack
	}
	c := a.cells[y*a.width+x]
	return c.rune, c.color
}

// Lit counts non-dark cells
func (a *Afterimage) Lit() int {
	n := 0
	for _, c := range a.cells {
		if c.rune != 0 {
			n++
		}
	}
	return n
}

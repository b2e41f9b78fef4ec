package render

import (
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/vmath"
)

const (
	// sparkSize is the world radius of a fragment mesh at scale 1
	sparkSize     = 0.02
	maxSparkCells = 3
	// pathDim darkens trails relative to the spark they follow
	pathDim = 0.55
	// trails at or above this thickness use the heavy glyph
	heavyThickness = 0.02
)

// Rect is a cell rectangle on the terminal
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell lies inside r
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether r has no cells
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Terminal composes a Scene onto a tcell screen region through an afterimage buffer
type Terminal struct {
	screen   tcell.Screen
	mapper   *projection.Mapper
	field    Rect
	glow     *Afterimage
	suppress bool
	nightSky bool
}

// NewTerminal creates a renderer drawing into field
func NewTerminal(screen tcell.Screen, mapper *projection.Mapper, field Rect) *Terminal {
	return &Terminal{
		screen: screen,
		mapper: mapper,
		field:  field,
		glow:   NewAfterimage(field.W, field.H),
	}
}

// SetField moves or resizes the drawing region, clearing the afterimage
func (t *Terminal) SetField(field Rect) {
	t.field = field
	t.glow.Resize(field.W, field.H)
}

func (t *Terminal) Field() Rect {
	return t.field
}

// Suppress drops the afterimage on the next frame so jumps do not smear
func (t *Terminal) Suppress() {
	t.suppress = true
}

func (t *Terminal) SetNightSky(on bool) {
	t.nightSky = on
}

// Draw fades the afterimage by dt, stamps every visible visual and writes the field cells
// The caller owns screen.Show
func (t *Terminal) Draw(scene *Scene, dt time.Duration) {
	if t.field.Empty() {
		return
	}
	if t.suppress {
		t.glow.Reset()
		t.suppress = false
	} else {
		t.glow.Decay(dt)
	}

	scene.Each(func(v *Visual) {
		if !v.Visible {
			return
		}
		switch v.Kind {
		case KindLaunchPath, KindBurstPath:
			t.stampPath(v)
		case KindProjectile:
			t.stampSpark(v, '●')
		case KindShrapnel:
			t.stampSpark(v, '*')
		}
	})

	t.blit()
}

func (t *Terminal) project(p vmath.Vec3) (x, y int, ok bool) {
	nx, ny, ok := t.mapper.WorldToNDC(p)
	if !ok {
		return 0, 0, false
	}
	x = int(math.Floor((nx + 1) / 2 * float64(t.field.W)))
	y = int(math.Floor((1 - ny) / 2 * float64(t.field.H)))
	return x, y, true
}

func (t *Terminal) stampSpark(v *Visual, glyph rune) {
	x, y, ok := t.project(v.Position)
	if !ok {
		return
	}
	color := FromColor(v.Color)
	radius := v.Scale * sparkSize * t.mapper.RowsPerUnit(-v.Position.Z, t.field.H)
	cells := min(int(radius), maxSparkCells)
	if cells == 0 {
		t.glow.Stamp(x, y, glyph, color)
		return
	}
	// Cells are roughly twice as tall as wide
	for dy := -cells; dy <= cells; dy++ {
		for dx := -2 * cells; dx <= 2*cells; dx++ {
			d := math.Hypot(float64(dx)/2, float64(dy))
			if d > float64(cells) {
				continue
			}
			falloff := 1 - d/float64(cells+1)
			g := '·'
			if d < 0.5 {
				g = glyph
			} else if falloff > 0.5 {
				g = '•'
			}
			t.glow.Stamp(x+dx, y+dy, g, color.Scale(falloff))
		}
	}
}

func (t *Terminal) stampPath(v *Visual) {
	if len(v.Path) < 2 {
		return
	}
	glyph := '·'
	if v.Thickness >= heavyThickness {
		glyph = '•'
	}
	color := FromColor(v.Color).Scale(pathDim)

	px, py, pok := t.project(v.Path[0])
	for _, p := range v.Path[1:] {
		x, y, ok := t.project(p)
		if ok && pok {
			t.line(px, py, x, y, glyph, color)
		}
		px, py, pok = x, y, ok
	}
}

// line stamps a Bresenham segment
func (t *Terminal) line(x0, y0, x1, y1 int, glyph rune, color RGB) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		t.glow.Stamp(x0, y0, glyph, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (t *Terminal) blit() {
	bg := RGBBlack
	if t.nightSky {
		bg = RGBNightSky
	}
	base := tcell.StyleDefault.Background(bg.Tcell())

	for y := 0; y < t.field.H; y++ {
		for x := 0; x < t.field.W; x++ {
			r, c := t.glow.At(x, y)
			style := base
			switch {
			case r != 0:
				style = style.Foreground(c.Tcell())
			case t.nightSky && isStar(x, y):
				r = '.'
				style = style.Foreground(RGBStar.Tcell())
			default:
				r = ' '
			}
			t.screen.SetContent(t.field.X+x, t.field.Y+y, r, nil, style)
		}
	}
}

// isStar is a fixed sparse pattern so the sky does not twinkle between frames
func isStar(x, y int) bool {
	h := uint32(x)*73856093 ^ uint32(y)*19349663
	h ^= h >> 13
	return h%89 == 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/fireworks/vmath"
)

// RGB stores explicit 8-bit color channels, decoupled from tcell
type RGB struct {
	R, G, B uint8
}

// Predefined colors
var (
	RGBBlack    = RGB{0, 0, 0}
	RGBNightSky = RGB{4, 6, 22}
	RGBStar     = RGB{90, 95, 120}
	RGBWidget   = RGB{40, 44, 60}
	RGBMarker   = RGB{255, 190, 60}
	RGBPlayhead = RGB{230, 230, 240}
)

// FromColor quantizes a linear color to 8-bit channels
func FromColor(c vmath.Color) RGB {
	r, g, b := c.RGB8()
	return RGB{r, g, b}
}

// Tcell converts to a true-color tcell value
func (c RGB) Tcell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Max returns per-channel maximum, used to let overlapping sparks keep the brightest
func (dst RGB) Max(src RGB) RGB {
	return RGB{
		R: max(dst.R, src.R),
		G: max(dst.G, src.G),
		B: max(dst.B, src.B),
	}
}

// Scale multiplies all channels by factor, clamped to 255
func (c RGB) Scale(factor float64) RGB {
	return RGB{
		R: clampByte(float64(c.R) * factor),
		G: clampByte(float64(c.G) * factor),
		B: clampByte(float64(c.B) * factor),
	}
}

// Luma is the Rec. 601 brightness in [0, 255]
func (c RGB) Luma() int {
	return (int(c.R)*299 + int(c.G)*587 + int(c.B)*114) / 1000
}

func clampByte(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

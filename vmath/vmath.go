package vmath

// Lerp interpolates a→b by t, t is not clamped
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1]
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// ClampInt limits v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Color is a linear RGB triple with channels in [0, 1]
type Color struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
}

// Predefined colors
var (
	ColorWhite = Color{1, 1, 1}
	ColorRed   = Color{1, 0, 0}
	ColorGreen = Color{0, 1, 0}
	ColorBlue  = Color{0, 0, 1}
	ColorBlack = Color{0, 0, 0}
)

// ColorLerp mixes a→b by t, t clamped to [0, 1]
func ColorLerp(a, b Color, t float64) Color {
	t = Clamp01(t)
	return Color{
		R: Lerp(a.R, b.R, t),
		G: Lerp(a.G, b.G, t),
		B: Lerp(a.B, b.B, t),
	}
}

// Clamped returns the color with every channel limited to [0, 1]
func (c Color) Clamped() Color {
	return Color{Clamp01(c.R), Clamp01(c.G), Clamp01(c.B)}
}

// Scaled multiplies every channel by s without clamping
func (c Color) Scaled(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// RGB8 converts to 8-bit channels with rounding
func (c Color) RGB8() (r, g, b uint8) {
	cc := c.Clamped()
	return uint8(cc.R*255 + 0.5), uint8(cc.G*255 + 0.5), uint8(cc.B*255 + 0.5)
}

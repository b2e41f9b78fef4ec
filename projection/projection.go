// Package projection maps between pointer space, the normalized show layout and world space
//
// The camera sits at the world origin looking down −Z with a fixed vertical field of view.
// Every firework lives on a reference plane in front of the camera, so a pointer position is
// converted to world space by intersecting the camera ray with that plane.
package projection

import (
	"errors"
	"math"

	"github.com/lixenwraith/fireworks/vmath"
)

const (
	// FieldOfView is the vertical camera field of view in degrees
	FieldOfView = 10.0
	// PlaneDistance is the distance from the camera to the reference plane
	PlaneDistance = 10.0
	// PlaneHalfSize is half the side length of the square reference plane
	PlaneHalfSize = 50.0
	// DefaultAspect is used until a viewport reports its size
	DefaultAspect = 16.0 / 9.0
)

// ErrIntersectionMiss is returned when a camera ray does not hit the reference plane
// The plane is sized to cover any sane viewport, so this indicates a setup bug
var ErrIntersectionMiss = errors.New("projection: ray does not intersect reference plane")

// Normalized is a viewport-independent position in percent of the viewport
// X grows right, Y grows up, both nominally in [0, 100]
type Normalized struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NDC converts percent coordinates to normalized device coordinates in [-1, 1]
func (n Normalized) NDC() (nx, ny float64) {
	return n.X/50 - 1, n.Y/50 - 1
}

// FromNDC converts normalized device coordinates to percent coordinates
func FromNDC(nx, ny float64) Normalized {
	return Normalized{X: (nx/2 + 0.5) * 100, Y: (ny/2 + 0.5) * 100}
}

// Rounded returns the position rounded to whole percent, as shown in the position readout
func (n Normalized) Rounded() (x, y int) {
	return int(math.Round(n.X)), int(math.Round(n.Y))
}

// Mapper is the coordinate collaborator shared by the engine and renderers
type Mapper struct {
	tanHalf float64
	aspect  float64
}

// New creates a mapper for a viewport with the given width/height ratio
func New(aspect float64) *Mapper {
	m := &Mapper{
		tanHalf: math.Tan(FieldOfView / 2 * math.Pi / 180),
		aspect:  DefaultAspect,
	}
	m.SetAspect(aspect)
	return m
}

// Aspect returns the current viewport width/height ratio
func (m *Mapper) Aspect() float64 {
	return m.aspect
}

// SetAspect updates the viewport ratio, non-positive values are ignored
func (m *Mapper) SetAspect(aspect float64) {
	if aspect > 0 && !math.IsInf(aspect, 0) && !math.IsNaN(aspect) {
		m.aspect = aspect
	}
}

// HalfHeight returns the half height of the visible region on the reference plane
func (m *Mapper) HalfHeight() float64 {
	return PlaneDistance * m.tanHalf
}

// PointToWorld intersects the camera ray through (nx, ny) with the reference plane
func (m *Mapper) PointToWorld(nx, ny float64) (vmath.Vec3, error) {
	dir := vmath.Vec3{X: nx * m.tanHalf * m.aspect, Y: ny * m.tanHalf, Z: -1}
	if dir.Z >= 0 {
		return vmath.Vec3{}, ErrIntersectionMiss
	}
	t := -PlaneDistance / dir.Z
	p := vmath.V3Scale(dir, t)
	if math.Abs(p.X) > PlaneHalfSize || math.Abs(p.Y) > PlaneHalfSize {
		return vmath.Vec3{}, ErrIntersectionMiss
	}
	return p, nil
}

// MustPointToWorld is PointToWorld for callers that treat a miss as fatal
func (m *Mapper) MustPointToWorld(nx, ny float64) vmath.Vec3 {
	p, err := m.PointToWorld(nx, ny)
	if err != nil {
		panic(err)
	}
	return p
}

// LaunchOrigin returns the launch pad position at the bottom center of the viewport
func (m *Mapper) LaunchOrigin() vmath.Vec3 {
	return m.MustPointToWorld(0, -1)
}

// WorldToNormalized stores a world position independent of viewport size
// createdAspect is the viewport ratio in effect when p was produced
func (m *Mapper) WorldToNormalized(p vmath.Vec3, createdAspect float64) Normalized {
	depth := -p.Z
	if depth <= 0 {
		depth = PlaneDistance
	}
	if createdAspect <= 0 {
		createdAspect = m.aspect
	}
	nx := p.X / depth / (m.tanHalf * createdAspect)
	ny := p.Y / depth / m.tanHalf
	return FromNDC(nx, ny)
}

// Reproject recomputes the world position of a stored point for the current viewport
// Widening keeps the layout captured at createdAspect; narrowing compresses X by
// currentAspect/createdAspect so the show stays on screen. Y is never rescaled.
func (m *Mapper) Reproject(n Normalized, createdAspect, currentAspect float64) vmath.Vec3 {
	if createdAspect <= 0 {
		createdAspect = currentAspect
	}
	nx, ny := n.NDC()
	hh := m.HalfHeight()
	x := nx * hh * createdAspect
	if currentAspect > 0 && currentAspect < createdAspect {
		x *= currentAspect / createdAspect
	}
	return vmath.Vec3{X: x, Y: ny * hh, Z: -PlaneDistance}
}

// WorldToNDC projects a world point with the current aspect, ok is false behind the camera
func (m *Mapper) WorldToNDC(p vmath.Vec3) (nx, ny float64, ok bool) {
	depth := -p.Z
	if depth <= 0 {
		return 0, 0, false
	}
	nx = p.X / depth / (m.tanHalf * m.aspect)
	ny = p.Y / depth / m.tanHalf
	return nx, ny, true
}

// WorldToScreen projects a world point onto a cols×rows cell grid
func (m *Mapper) WorldToScreen(p vmath.Vec3, cols, rows int) (x, y int, ok bool) {
	nx, ny, ok := m.WorldToNDC(p)
	if !ok || cols <= 0 || rows <= 0 {
		return 0, 0, false
	}
	x = int(math.Floor((nx + 1) / 2 * float64(cols)))
	y = int(math.Floor((1 - ny) / 2 * float64(rows)))
	if x < 0 || x >= cols || y < 0 || y >= rows {
		return x, y, false
	}
	return x, y, true
}

// ScreenToNDC converts a cell coordinate to the NDC of the cell center
func ScreenToNDC(x, y, cols, rows int) (nx, ny float64) {
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	nx = (float64(x)+0.5)/float64(cols)*2 - 1
	ny = 1 - (float64(y)+0.5)/float64(rows)*2
	return nx, ny
}

// RowsPerUnit returns how many screen rows one world unit spans at the given depth
func (m *Mapper) RowsPerUnit(depth float64, rows int) float64 {
	if depth <= 0 {
		depth = PlaneDistance
	}
	return float64(rows) / 2 / (depth * m.tanHalf)
}

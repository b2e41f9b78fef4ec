// Package trajectory holds the pure position functions of launches and explosions
//
// Every function takes a normalized progress k, already scaled by the caller, and returns
// a point in world space. Nothing here keeps state, so any clock position can be sampled
// in any order.
package trajectory

import (
	"math"

	"github.com/lixenwraith/fireworks/vmath"
)

const (
	// DriftSag is the downward fall of drift fragments at k=1 per unit of scale
	DriftSag = 0.075
	// ZapJitter is the jitter amplitude of zap fragments at k=0 per unit of scale
	ZapJitter = 0.05

	launchThickness      = 0.01
	launchThicknessFloor = 0.0025
	burstThickness       = 0.05
	burstThicknessFloor  = 0.001

	shrinkFloor = 0.5
)

// Rand is the random source used for jitter and offset generation
// *math/rand.Rand satisfies it
type Rand interface {
	Float64() float64
}

// Sample is the state of one fragment at a given progress
type Sample struct {
	Position      vmath.Vec3
	Scale         float64 // Multiplier for the fragment mesh size
	PathThickness float64 // Zero for shapes without trail
}

// sampler is implemented by each explosion shape
type sampler interface {
	position(k float64, origin, target vmath.Vec3, sv float64, rng Rand) vmath.Vec3
	scale(k float64) float64
}

var samplers = [shapeCount]sampler{
	Burst:   burstSampler{},
	Drift:   driftSampler{},
	Pop:     popSampler{},
	Flash:   flashSampler{},
	Zap:     zapSampler{},
	Flower:  flowerSampler{},
	Flower2: flowerSampler{normalized: true},
}

// Launch returns the projectile position on the launch arc
// Horizontal axes ease in (k²), the vertical axis eases out (2k−k²), so the arc rises fast
// and lands exactly on target at k=1
func Launch(k float64, origin, target vmath.Vec3) vmath.Vec3 {
	kx := k * k
	ky := -k*k + 2*k
	return vmath.Vec3{
		X: vmath.Lerp(origin.X, target.X, kx),
		Y: vmath.Lerp(origin.Y, target.Y, ky),
		Z: vmath.Lerp(origin.Z, target.Z, kx),
	}
}

// LaunchThickness is the launch trail thickness at progress k
func LaunchThickness(k float64) float64 {
	return math.Max((1-k)*launchThickness, launchThicknessFloor)
}

// ProjectileScale is the projectile mesh scale at progress k
func ProjectileScale(k float64) float64 {
	return math.Max(math.Min(k, 1), 0.5) * 0.1
}

// Sample evaluates the explosion shape for one fragment
// origin is the explosion center, target the fragment terminal point, sv the firework scale
func (s Shape) Sample(k float64, origin, target vmath.Vec3, sv float64, rng Rand) Sample {
	if !s.Valid() {
		s = Burst
	}
	smp := samplers[s]
	out := Sample{
		Position: smp.position(k, origin, target, sv, rng),
		Scale:    smp.scale(k),
	}
	if profiles[s].Trail {
		out.PathThickness = math.Max((1-k)*burstThickness, burstThicknessFloor)
	}
	return out
}

// FragmentColor blends near→far over the second half of the burst
func FragmentColor(near, far vmath.Color, k float64) vmath.Color {
	return vmath.ColorLerp(near, far, math.Max(math.Min(2*k-1, 1), 0))
}

// LaunchPath returns the launch trail polyline from the pad to progress k
func LaunchPath(origin, target vmath.Vec3, k float64, segments int) []vmath.Vec3 {
	if segments < 1 {
		segments = 1
	}
	pts := make([]vmath.Vec3, 0, segments+1)
	for i := 0; i <= segments; i++ {
		p := float64(i) / float64(segments) * k
		pts = append(pts, Launch(p, origin, target))
	}
	return pts
}

// BurstPath returns a fragment trail from the center to progress k
// The last point is the fragment's current position so jittered shapes stay attached
func (s Shape) BurstPath(origin, target, current vmath.Vec3, k, sv float64, segments int) []vmath.Vec3 {
	if !s.Valid() {
		s = Burst
	}
	if segments < 1 {
		segments = 1
	}
	smp := samplers[s]
	pts := make([]vmath.Vec3, 0, segments+1)
	for i := 0; i < segments; i++ {
		p := float64(i) / float64(segments) * k
		pts = append(pts, smp.position(p, origin, target, sv, nil))
	}
	return append(pts, current)
}

// --- Shapes ---

type burstSampler struct{}

func (burstSampler) position(k float64, o, t vmath.Vec3, _ float64, _ Rand) vmath.Vec3 {
	return vmath.V3Lerp(o, t, k)
}

func (burstSampler) scale(k float64) float64 { return shrink(k) }

// driftSampler falls under a quadratic sag; the lerp aims above target by the full sag
// so the fragment still closes on target at k=1
type driftSampler struct{}

func (driftSampler) position(k float64, o, t vmath.Vec3, sv float64, _ Rand) vmath.Vec3 {
	sag := DriftSag * sv
	lifted := vmath.Vec3{X: t.X, Y: t.Y + sag, Z: t.Z}
	p := vmath.V3Lerp(o, lifted, k)
	p.Y -= k * k * sag
	return p
}

func (driftSampler) scale(k float64) float64 { return shrink(k) }

type popSampler struct{}

func (popSampler) position(k float64, o, t vmath.Vec3, _ float64, _ Rand) vmath.Vec3 {
	return vmath.V3Lerp(o, t, k)
}

func (popSampler) scale(k float64) float64 {
	g := 1 + math.Max(k, 0)
	return g * g * g * g
}

type flashSampler struct{}

func (flashSampler) position(_ float64, o, _ vmath.Vec3, _ float64, _ Rand) vmath.Vec3 {
	return o
}

func (flashSampler) scale(k float64) float64 {
	g := 1 + 2*math.Max(k, 0)
	return g * g * g * g
}

// zapSampler adds per-frame jitter that decays to zero at k=1
type zapSampler struct{}

func (zapSampler) position(k float64, o, t vmath.Vec3, sv float64, rng Rand) vmath.Vec3 {
	p := vmath.V3Lerp(o, t, k)
	if rng == nil {
		return p
	}
	amp := ZapJitter * sv * (1 - k)
	if amp <= 0 {
		return p
	}
	p.X += (rng.Float64()*2 - 1) * amp
	p.Y += (rng.Float64()*2 - 1) * amp
	p.Z += (rng.Float64()*2 - 1) * amp
	return p
}

func (zapSampler) scale(k float64) float64 { return shrink(k) }

// flowerSampler interpolates from an intermediate point that runs ahead of the fragment
// (3k²) back onto target, so fragments overshoot and curl back
// normalized pins the intermediate offset to the fragment radius |t-o| and swirls it
// about the view axis; the swirl unwinds as k reaches 1
type flowerSampler struct {
	normalized bool
}

func (f flowerSampler) position(k float64, o, t vmath.Vec3, _ float64, _ Rand) vmath.Vec3 {
	l := vmath.V3Lerp(o, t, k*k*3)
	if f.normalized {
		d := vmath.V3Sub(t, o)
		sin, cos := math.Sincos((1 - k) * math.Pi / 2)
		l = vmath.Vec3{
			X: o.X + d.X*cos - d.Y*sin,
			Y: o.Y + d.X*sin + d.Y*cos,
			Z: o.Z + d.Z,
		}
	}
	return vmath.V3Lerp(l, t, k)
}

func (flowerSampler) scale(k float64) float64 { return shrink(k) }

func shrink(k float64) float64 {
	return math.Max(math.Min(1-k, 1), shrinkFloor)
}

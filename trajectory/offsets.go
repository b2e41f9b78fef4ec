package trajectory

import (
	"math"

	"github.com/lixenwraith/fireworks/vmath"
)

const (
	radiusMin    = 0.15
	radiusRandom = 0.25
	ringPetals   = 5
)

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Radius draws the burst radius for a firework of scale sv
func Radius(sv float64, rng Rand) float64 {
	r := radiusMin
	if rng != nil {
		r = math.Max(rng.Float64()*radiusRandom, radiusMin)
	}
	return r * sv
}

// Offsets generates the fixed terminal offsets of every fragment relative to the center
func (s Shape) Offsets(sv float64, rng Rand) []vmath.Vec3 {
	prof := s.Profile()
	n := prof.Fragments
	radius := Radius(sv, rng)
	out := make([]vmath.Vec3, n)

	switch prof.Pattern {
	case PatternSphere:
		for i := range out {
			y := 1 - 2*(float64(i)+0.5)/float64(n)
			ring := math.Sqrt(math.Max(1-y*y, 0))
			sin, cos := math.Sincos(float64(i) * goldenAngle)
			out[i] = vmath.V3Scale(vmath.Vec3{X: cos * ring, Y: y, Z: sin * ring}, radius)
		}

	case PatternCube:
		for i := range out {
			out[i] = vmath.Vec3{
				X: signed(rng) * radius,
				Y: signed(rng) * radius,
				Z: signed(rng) * radius,
			}
		}

	case PatternPoint:
		// zero offsets

	case PatternRing:
		for i := range out {
			theta := 2 * math.Pi * float64(i) / float64(n)
			petal := radius * (0.6 + 0.4*math.Sin(ringPetals*theta))
			sin, cos := math.Sincos(theta)
			out[i] = vmath.Vec3{X: cos * petal, Y: sin * petal}
		}
	}
	return out
}

func signed(rng Rand) float64 {
	if rng == nil {
		return 0
	}
	return rng.Float64()*2 - 1
}

package trajectory

import (
	"fmt"
	"strings"
)

// Shape selects the explosion pattern of a firework
// The numeric value is the wire index used by the show codec and must not be reordered
type Shape uint8

const (
	Burst Shape = iota
	Drift
	Pop
	Flash
	Zap
	Flower
	Flower2
	shapeCount
)

// ShapeCount is the number of explosion shapes
const ShapeCount = int(shapeCount)

var shapeNames = [shapeCount]string{
	Burst:   "burst",
	Drift:   "drift",
	Pop:     "pop",
	Flash:   "flash",
	Zap:     "zap",
	Flower:  "flower",
	Flower2: "flower2",
}

// Pattern is the spatial distribution of fragment terminal offsets
type Pattern uint8

const (
	PatternSphere Pattern = iota // Fibonacci lattice on a sphere
	PatternCube                  // Uniform random jitter inside a cube
	PatternPoint                 // Single fragment at the center
	PatternRing                  // Sinusoidal ring in the view plane
)

// Profile holds the static per-shape parameters
type Profile struct {
	Fragments int     // Shrapnel count, 1..30
	Duration  float64 // Explosion duration in ms
	Trail     bool    // Fragments leave a trailing path
	Pattern   Pattern
}

var profiles = [shapeCount]Profile{
	Burst:   {Fragments: 30, Duration: 1200, Trail: true, Pattern: PatternSphere},
	Drift:   {Fragments: 20, Duration: 1800, Trail: true, Pattern: PatternCube},
	Pop:     {Fragments: 24, Duration: 600, Trail: false, Pattern: PatternSphere},
	Flash:   {Fragments: 1, Duration: 400, Trail: false, Pattern: PatternPoint},
	Zap:     {Fragments: 16, Duration: 1000, Trail: true, Pattern: PatternCube},
	Flower:  {Fragments: 24, Duration: 1500, Trail: true, Pattern: PatternRing},
	Flower2: {Fragments: 24, Duration: 1500, Trail: true, Pattern: PatternRing},
}

// Shapes returns every shape in wire order
func Shapes() []Shape {
	out := make([]Shape, 0, shapeCount)
	for s := Shape(0); s < shapeCount; s++ {
		out = append(out, s)
	}
	return out
}

func (s Shape) Valid() bool {
	return s < shapeCount
}

func (s Shape) String() string {
	if !s.Valid() {
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
	return shapeNames[s]
}

// Profile returns the static parameters, invalid shapes fall back to Burst
func (s Shape) Profile() Profile {
	if !s.Valid() {
		return profiles[Burst]
	}
	return profiles[s]
}

// ParseShape resolves a shape by name, case-insensitive
func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown explosion shape %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (s Shape) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid explosion shape %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Shape) UnmarshalText(b []byte) error {
	v, err := ParseShape(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

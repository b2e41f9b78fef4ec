package firework

import (
	"math"

	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/trajectory"
	"github.com/lixenwraith/fireworks/vmath"
)

const (
	MinScale     = 0.5
	MaxScale     = 3.0
	ScaleStep    = 0.25
	DefaultScale = 1.0
)

// Params are the user-chosen visual and audio settings of one firework
type Params struct {
	Shape          trajectory.Shape      `json:"shape" yaml:"shape"`
	LaunchColor    vmath.Color           `json:"launch_color" yaml:"launch_color"`
	NearColor      vmath.Color           `json:"near_color" yaml:"near_color"`
	FarColor       vmath.Color           `json:"far_color" yaml:"far_color"`
	Scale          float64               `json:"scale" yaml:"scale"`
	LaunchAudio    bool                  `json:"launch_audio" yaml:"launch_audio"`
	ExplosionAudio bool                  `json:"explosion_audio" yaml:"explosion_audio"`
	Position       projection.Normalized `json:"position" yaml:"position"`
	Aspect         float64               `json:"aspect" yaml:"aspect"`
}

// DefaultParams is the template a fresh editor starts from
func DefaultParams() Params {
	return Params{
		Shape:          trajectory.Burst,
		LaunchColor:    vmath.ColorWhite,
		NearColor:      vmath.Color{R: 1, G: 0.8, B: 0.2},
		FarColor:       vmath.ColorRed,
		Scale:          DefaultScale,
		LaunchAudio:    true,
		ExplosionAudio: true,
		Position:       projection.Normalized{X: 50, Y: 50},
		Aspect:         projection.DefaultAspect,
	}
}

// Clamped returns p with every field inside its legal range
func (p Params) Clamped() Params {
	if !p.Shape.Valid() {
		p.Shape = trajectory.Burst
	}
	p.LaunchColor = p.LaunchColor.Clamped()
	p.NearColor = p.NearColor.Clamped()
	p.FarColor = p.FarColor.Clamped()
	p.Scale = ClampScale(p.Scale)
	p.Position.X = vmath.Clamp(p.Position.X, 0, 100)
	p.Position.Y = vmath.Clamp(p.Position.Y, 0, 100)
	if p.Aspect <= 0 || math.IsNaN(p.Aspect) || math.IsInf(p.Aspect, 0) {
		p.Aspect = projection.DefaultAspect
	}
	return p
}

// ClampScale limits s to [MinScale, MaxScale], NaN becomes the default
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return DefaultScale
	}
	return vmath.Clamp(s, MinScale, MaxScale)
}

// StepScale moves s by n steps of ScaleStep and clamps
func StepScale(s float64, n int) float64 {
	return ClampScale(s + float64(n)*ScaleStep)
}

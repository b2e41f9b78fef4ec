package engine

import (
	"math/rand"

	"github.com/lixenwraith/fireworks/firework"
	"github.com/lixenwraith/fireworks/trajectory"
	"github.com/lixenwraith/fireworks/vmath"
)

// Template is the recipe for the next firework
// Randomized fields are re-rolled on every create and the result is kept, so the UI always
// shows what was launched last.
type Template struct {
	Params       firework.Params
	RandomShape  bool
	RandomColors bool
	RandomScale  bool
}

// DefaultTemplate starts with every randomize toggle on
func DefaultTemplate() Template {
	return Template{
		Params:       firework.DefaultParams(),
		RandomShape:  true,
		RandomColors: true,
		RandomScale:  true,
	}
}

// next rolls the randomized fields and returns the params to launch
func (t *Template) next(rng *rand.Rand) firework.Params {
	if t.RandomShape {
		t.Params.Shape = trajectory.Shape(rng.Intn(trajectory.ShapeCount))
	}
	if t.RandomColors {
		t.Params.LaunchColor = randomColor(rng)
		t.Params.NearColor = randomColor(rng)
		t.Params.FarColor = randomColor(rng)
	}
	if t.RandomScale {
		t.Params.Scale = firework.MinScale + rng.Float64()*(firework.MaxScale-firework.MinScale)
	}
	return t.Params
}

func randomColor(rng *rand.Rand) vmath.Color {
	return vmath.Color{R: rng.Float64(), G: rng.Float64(), B: rng.Float64()}
}

// Template returns a copy of the current template
func (e *Engine) Template() Template {
	return e.template
}

func (e *Engine) SetShape(s trajectory.Shape) {
	if s.Valid() {
		e.template.Params.Shape = s
	}
	e.publishState()
}

// CycleShape steps the template shape by n, wrapping
func (e *Engine) CycleShape(n int) {
	c := trajectory.ShapeCount
	next := ((int(e.template.Params.Shape)+n)%c + c) % c
	e.SetShape(trajectory.Shape(next))
}

func (e *Engine) SetLaunchColor(c vmath.Color) { e.template.Params.LaunchColor = c.Clamped() }
func (e *Engine) SetNearColor(c vmath.Color)   { e.template.Params.NearColor = c.Clamped() }
func (e *Engine) SetFarColor(c vmath.Color)    { e.template.Params.FarColor = c.Clamped() }

// SetScale clamps silently to [MinScale, MaxScale]
func (e *Engine) SetScale(s float64) {
	e.template.Params.Scale = firework.ClampScale(s)
}

// StepScale moves the template scale by n steps of ScaleStep
func (e *Engine) StepScale(n int) {
	e.template.Params.Scale = firework.StepScale(e.template.Params.Scale, n)
}

func (e *Engine) SetLaunchAudio(on bool)    { e.template.Params.LaunchAudio = on }
func (e *Engine) SetExplosionAudio(on bool) { e.template.Params.ExplosionAudio = on }
func (e *Engine) SetRandomShape(on bool)    { e.template.RandomShape = on }
func (e *Engine) SetRandomColors(on bool)   { e.template.RandomColors = on }
func (e *Engine) SetRandomScale(on bool)    { e.template.RandomScale = on }

// SetRandomize flips all three randomize toggles at once
func (e *Engine) SetRandomize(on bool) {
	e.template.RandomShape = on
	e.template.RandomColors = on
	e.template.RandomScale = on
}

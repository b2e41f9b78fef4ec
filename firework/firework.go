// Package firework implements one firework as a pure function of the clock
//
// A firework owns a launch slot (shell plus trail) and one slot per fragment. Every frame
// Evaluate derives each slot's mode from the clock, runs it through the slot transition
// table and pushes positions to the renderer. Nothing depends on the previous frame except
// which handles are live, so the clock may jump or run backwards.
package firework

import (
	"github.com/lixenwraith/fireworks/audio"
	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/render"
	"github.com/lixenwraith/fireworks/trajectory"
	"github.com/lixenwraith/fireworks/vmath"
)

// PathSegments is the polyline resolution of every trail
const PathSegments = 24

// Deps are the collaborators a firework draws through
type Deps struct {
	Mapper   *projection.Mapper
	Renderer render.Renderer
	Rand     trajectory.Rand // offsets, cue choice and zap jitter; nil is deterministic
}

// State is the runtime status, kept apart from the user params
type State struct {
	Active         bool
	Recorded       bool
	Phase          Phase
	LaunchFired    bool
	ExplosionFired bool
}

type Firework struct {
	ID     int
	Params Params
	Timing Timing
	State  State

	Origin  vmath.Vec3
	Target  vmath.Vec3
	Offsets []vmath.Vec3

	LaunchCue    audio.Cue
	ExplosionCue audio.Cue

	deps      Deps
	launch    slot
	fragments []slot
}

// New creates an active firework; no visual is allocated until its first Evaluate
func New(id int, p Params, timing Timing, recorded bool, d Deps) *Firework {
	p = p.Clamped()
	f := &Firework{
		ID:     id,
		Params: p,
		Timing: timing,
		State:  State{Active: true, Recorded: recorded},
		deps:   d,
	}
	f.Offsets = p.Shape.Offsets(p.Scale, d.Rand)
	f.fragments = make([]slot, len(f.Offsets))
	f.LaunchCue, f.ExplosionCue = pickCues(p.Shape, d.Rand)
	f.updateGeometry()
	return f
}

// updateGeometry re-derives the launch pad and target from the current viewport
func (f *Firework) updateGeometry() {
	m := f.deps.Mapper
	f.Origin = m.LaunchOrigin()
	f.Target = m.Reproject(f.Params.Position, f.Params.Aspect, m.Aspect())
}

// Evaluate brings every slot in line with clock and returns the number of cues played
// cues may be nil to evaluate silently
func (f *Firework) Evaluate(clock float64, cues CuePlayer) int {
	if !f.State.Active {
		return 0
	}
	f.updateGeometry()

	kl := f.Timing.LaunchK(clock)
	ke := f.Timing.ExplosionK(clock)

	played := f.fireCues(kl, ke, cues)
	f.evalLaunch(kl)
	for i := range f.fragments {
		f.evalFragment(i, ke)
	}
	f.State.Phase = f.Timing.PhaseAt(clock)

	if !f.State.Recorded && ke >= 1 {
		f.Dispose()
	}
	return played
}

// RearmCues lets both cues fire again, for passes the clock starts inside the launch
func (f *Firework) RearmCues() {
	f.State.LaunchFired = false
	f.State.ExplosionFired = false
}

func (f *Firework) fireCues(kl, ke float64, cues CuePlayer) int {
	if kl < 0 {
		f.State.LaunchFired = false
	}
	if ke < 0 {
		f.State.ExplosionFired = false
	}

	played := 0
	if kl >= 0 && kl < 1 && !f.State.LaunchFired {
		f.State.LaunchFired = true
		if f.Params.LaunchAudio && cues != nil && cues.Play(f.LaunchCue) {
			played++
		}
	}
	if ke >= 0 && ke < 1 && !f.State.ExplosionFired {
		f.State.ExplosionFired = true
		if f.Params.ExplosionAudio && cues != nil && cues.Play(f.ExplosionCue) {
			played++
		}
	}
	return played
}

// LaunchMode maps launch progress to the launch slot mode
func LaunchMode(kl float64) Mode {
	switch {
	case kl >= 0 && kl < 1:
		return ModeAnimate
	case kl >= 1 && kl < LaunchHoldWindow:
		return ModeHold
	default:
		return ModeRelease
	}
}

// FragmentMode maps explosion progress to a fragment slot mode
func FragmentMode(ke float64) Mode {
	if ke >= 0 && ke < 1 {
		return ModeAnimate
	}
	return ModeRelease
}

func (f *Firework) evalLaunch(kl float64) {
	mode := LaunchMode(kl)
	act, next := Transition(f.launch.state, mode, f.State.Recorded)

	switch act {
	case ActionAllocate:
		f.allocLaunch()
		fallthrough
	case ActionUpdate:
		k := kl
		if mode == ModeHold {
			k = 1
		}
		f.drawLaunch(k)
	case ActionRelease:
		f.launch.release(f.deps.Renderer)
	}
	f.launch.state = next
}

func (f *Firework) allocLaunch() {
	r := f.deps.Renderer
	f.launch.body = r.CreateVisual(render.KindProjectile, render.VisualParams{
		Owner: f.ID,
		Color: f.Params.LaunchColor,
		Scale: trajectory.ProjectileScale(0),
	})
	f.launch.path = r.CreateVisual(render.KindLaunchPath, render.VisualParams{
		Owner:     f.ID,
		Color:     f.Params.LaunchColor,
		Thickness: trajectory.LaunchThickness(0),
	})
	r.Show(f.launch.body)
	r.Show(f.launch.path)
}

func (f *Firework) drawLaunch(k float64) {
	r := f.deps.Renderer
	r.SetPosition(f.launch.body, trajectory.Launch(k, f.Origin, f.Target))
	r.SetScale(f.launch.body, trajectory.ProjectileScale(k))
	r.SetPath(f.launch.path, trajectory.LaunchPath(f.Origin, f.Target, k, PathSegments), trajectory.LaunchThickness(k))
}

func (f *Firework) evalFragment(i int, ke float64) {
	s := &f.fragments[i]
	act, next := Transition(s.state, FragmentMode(ke), f.State.Recorded)

	switch act {
	case ActionAllocate:
		f.allocFragment(s)
		fallthrough
	case ActionUpdate:
		f.drawFragment(s, i, ke)
	case ActionRelease:
		s.release(f.deps.Renderer)
	}
	s.state = next
}

func (f *Firework) allocFragment(s *slot) {
	r := f.deps.Renderer
	p := render.VisualParams{Owner: f.ID, Color: f.Params.NearColor, Scale: 1}
	s.body = r.CreateVisual(render.KindShrapnel, p)
	r.Show(s.body)
	if f.Params.Shape.Profile().Trail {
		s.path = r.CreateVisual(render.KindBurstPath, p)
		r.Show(s.path)
	}
}

func (f *Firework) drawFragment(s *slot, i int, ke float64) {
	r := f.deps.Renderer
	shape := f.Params.Shape
	terminal := vmath.V3Add(f.Target, f.Offsets[i])
	smp := shape.Sample(ke, f.Target, terminal, f.Params.Scale, f.deps.Rand)
	color := trajectory.FragmentColor(f.Params.NearColor, f.Params.FarColor, ke)

	r.SetPosition(s.body, smp.Position)
	r.SetScale(s.body, smp.Scale)
	r.SetColor(s.body, color)
	if s.path != 0 {
		pts := shape.BurstPath(f.Target, terminal, smp.Position, ke, f.Params.Scale, PathSegments)
		r.SetPath(s.path, pts, smp.PathThickness)
		r.SetColor(s.path, color)
	}
}

// Dispose releases every live visual and retires the firework; calling it again is a no-op
func (f *Firework) Dispose() {
	r := f.deps.Renderer
	f.launch.release(r)
	for i := range f.fragments {
		f.fragments[i].release(r)
	}
	f.State.Active = false
	f.State.Phase = PhaseDisposed
}

// ExplosionTime is the timeline marker of the firework
func (f *Firework) ExplosionTime() float64 {
	return f.Timing.ExplosionStart
}

// LaunchSlot returns the launch slot state
func (f *Firework) LaunchSlot() SlotState {
	return f.launch.state
}

// FragmentSlots returns the state of every fragment slot
func (f *Firework) FragmentSlots() []SlotState {
	out := make([]SlotState, len(f.fragments))
	for i, s := range f.fragments {
		out[i] = s.state
	}
	return out
}

// LiveHandles counts renderer handles currently held
func (f *Firework) LiveHandles() int {
	n := 0
	count := func(s slot) {
		if s.state != SlotLive {
			return
		}
		n++
		if s.path != 0 {
			n++
		}
	}
	count(f.launch)
	for _, s := range f.fragments {
		count(s)
	}
	return n
}

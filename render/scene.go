package render

import (
	"sort"

	"github.com/lixenwraith/fireworks/vmath"
)

// Visual is the retained state of one handle
type Visual struct {
	Handle    Handle       `json:"h"`
	Kind      Kind         `json:"k"`
	Owner     int          `json:"o"`
	Visible   bool         `json:"v"`
	Position  vmath.Vec3   `json:"p"`
	Scale     float64      `json:"s"`
	Color     vmath.Color  `json:"c"`
	Thickness float64      `json:"t,omitempty"`
	Path      []vmath.Vec3 `json:"path,omitempty"`
}

// SceneStats counts handle lifecycle events
type SceneStats struct {
	Live     int
	Created  int
	Disposed int
	// Stale counts calls made with a handle that is not live
	Stale int
}

// Scene is an in-memory Renderer
// Not safe for concurrent use; the frame loop owns it and hands out copies via Frame
type Scene struct {
	next    Handle
	visuals map[Handle]*Visual
	stats   SceneStats
}

func NewScene() *Scene {
	return &Scene{visuals: make(map[Handle]*Visual)}
}

func (s *Scene) CreateVisual(kind Kind, p VisualParams) Handle {
	s.next++
	h := s.next
	s.visuals[h] = &Visual{
		Handle:    h,
		Kind:      kind,
		Owner:     p.Owner,
		Color:     p.Color,
		Scale:     p.Scale,
		Thickness: p.Thickness,
	}
	s.stats.Created++
	return h
}

func (s *Scene) lookup(h Handle) *Visual {
	v, ok := s.visuals[h]
	if !ok {
		s.stats.Stale++
		return nil
	}
	return v
}

func (s *Scene) SetPosition(h Handle, p vmath.Vec3) {
	if v := s.lookup(h); v != nil {
		v.Position = p
	}
}

func (s *Scene) SetScale(h Handle, sc float64) {
	if v := s.lookup(h); v != nil {
		v.Scale = sc
	}
}

func (s *Scene) SetColor(h Handle, c vmath.Color) {
	if v := s.lookup(h); v != nil {
		v.Color = c
	}
}

func (s *Scene) SetPath(h Handle, pts []vmath.Vec3, thickness float64) {
	if v := s.lookup(h); v != nil {
		v.Path = append(v.Path[:0], pts...)
		v.Thickness = thickness
	}
}

func (s *Scene) Show(h Handle) {
	if v := s.lookup(h); v != nil {
		v.Visible = true
	}
}

func (s *Scene) Hide(h Handle) {
	if v := s.lookup(h); v != nil {
		v.Visible = false
	}
}

// DisposeVisual removes the handle, disposing twice is a no-op
func (s *Scene) DisposeVisual(h Handle) {
	if _, ok := s.visuals[h]; !ok {
		return
	}
	delete(s.visuals, h)
	s.stats.Disposed++
}

// Lookup returns a copy of the visual behind h
func (s *Scene) Lookup(h Handle) (Visual, bool) {
	v, ok := s.visuals[h]
	if !ok {
		return Visual{}, false
	}
	return *v, true
}

// Len returns the number of live handles
func (s *Scene) Len() int {
	return len(s.visuals)
}

func (s *Scene) Stats() SceneStats {
	st := s.stats
	st.Live = len(s.visuals)
	return st
}

// Each visits live visuals in handle order
func (s *Scene) Each(fn func(v *Visual)) {
	for _, h := range s.handles() {
		fn(s.visuals[h])
	}
}

// Frame returns deep copies of the visible visuals in handle order
func (s *Scene) Frame() []Visual {
	out := make([]Visual, 0, len(s.visuals))
	for _, h := range s.handles() {
		v := s.visuals[h]
		if !v.Visible {
			continue
		}
		cp := *v
		if len(v.Path) > 0 {
			cp.Path = append([]vmath.Vec3(nil), v.Path...)
		}
		out = append(out, cp)
	}
	return out
}

func (s *Scene) handles() []Handle {
	hs := make([]Handle, 0, len(s.visuals))
	for h := range s.visuals {
		hs = append(hs, h)
	}
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
	return hs
}

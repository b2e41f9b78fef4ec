package firework

import (
	"fmt"

	"github.com/lixenwraith/fireworks/render"
)

// SlotState is the resource state of one visual slot
type SlotState uint8

const (
	SlotUnallocated SlotState = iota
	SlotLive
	SlotDisposed
)

func (s SlotState) String() string {
	switch s {
	case SlotUnallocated:
		return "unallocated"
	case SlotLive:
		return "live"
	case SlotDisposed:
		return "disposed"
	}
	return fmt.Sprintf("slot(%d)", uint8(s))
}

// Mode is what the clock asks of a slot this frame
type Mode uint8

const (
	ModeAnimate Mode = iota
	ModeHold
	ModeRelease
)

// Action is what the slot does in response
type Action uint8

const (
	ActionNone Action = iota
	ActionAllocate
	ActionUpdate
	ActionRelease
)

type transition struct {
	action Action
	next   SlotState
}

// transitions is indexed by [state][mode]; disposed rows are for one-shot slots
var transitions = [3][3]transition{
	SlotUnallocated: {
		ModeAnimate: {ActionAllocate, SlotLive},
		ModeHold:    {ActionAllocate, SlotLive},
		ModeRelease: {ActionNone, SlotUnallocated},
	},
	SlotLive: {
		ModeAnimate: {ActionUpdate, SlotLive},
		ModeHold:    {ActionUpdate, SlotLive},
		ModeRelease: {ActionRelease, SlotDisposed},
	},
	SlotDisposed: {
		ModeAnimate: {ActionNone, SlotDisposed},
		ModeHold:    {ActionNone, SlotDisposed},
		ModeRelease: {ActionNone, SlotDisposed},
	},
}

// Transition resolves the action for a slot
// Replayable slots leave disposed when asked to animate or hold, so scrubbing back re-creates them
func Transition(s SlotState, m Mode, replayable bool) (Action, SlotState) {
	if s == SlotDisposed && replayable && m != ModeRelease {
		s = SlotUnallocated
	}
	if s > SlotDisposed || m > ModeRelease {
		return ActionNone, s
	}
	t := transitions[s][m]
	return t.action, t.next
}

// slot owns a body visual and an optional trail visual
type slot struct {
	state SlotState
	body  render.Handle
	path  render.Handle
}

func (s *slot) release(r render.Renderer) {
	if s.state != SlotLive {
		return
	}
	r.DisposeVisual(s.body)
	if s.path != 0 {
		r.DisposeVisual(s.path)
	}
	s.body, s.path = 0, 0
	s.state = SlotDisposed
}

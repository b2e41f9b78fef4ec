package firework

import (
	"fmt"

	"github.com/lixenwraith/fireworks/trajectory"
)

const (
	// LaunchDuration is the flight time of every shell in ms
	LaunchDuration = 1000.0
	// LaunchHoldWindow is the launch progress up to which the spent shell stays on screen
	LaunchHoldWindow = 1.2
)

// Timing places a firework on the clock, all values in ms
type Timing struct {
	LaunchStart       float64 `json:"launch_start" yaml:"launch_start"`
	LaunchDuration    float64 `json:"launch_duration" yaml:"launch_duration"`
	ExplosionStart    float64 `json:"explosion_start" yaml:"explosion_start"`
	ExplosionDuration float64 `json:"explosion_duration" yaml:"explosion_duration"`
}

// NewTiming schedules a launch at launchStart for the given shape
func NewTiming(launchStart float64, shape trajectory.Shape) Timing {
	return Timing{
		LaunchStart:       launchStart,
		LaunchDuration:    LaunchDuration,
		ExplosionStart:    launchStart + LaunchDuration,
		ExplosionDuration: shape.Profile().Duration,
	}
}

// TimingForExplosion schedules so the explosion starts at explosionStart
func TimingForExplosion(explosionStart float64, shape trajectory.Shape) Timing {
	return NewTiming(explosionStart-LaunchDuration, shape)
}

// LaunchK is the launch progress at clock, unclamped
func (t Timing) LaunchK(clock float64) float64 {
	return (clock - t.LaunchStart) / t.LaunchDuration
}

// ExplosionK is the explosion progress at clock, unclamped
func (t Timing) ExplosionK(clock float64) float64 {
	return (clock - t.ExplosionStart) / t.ExplosionDuration
}

// End is the clock at which the last fragment completes
func (t Timing) End() float64 {
	return t.ExplosionStart + t.ExplosionDuration
}

// Phase is the coarse lifecycle stage of a firework
type Phase uint8

const (
	PhasePreLaunch     Phase = iota // Before launch, nothing allocated
	PhaseLaunching                  // Shell rising
	PhaseLaunchHold                 // Shell parked at target while the explosion begins
	PhaseExploding                  // Fragments animating
	PhaseExplosionHold              // Every fragment completed, entity kept for replay
	PhaseDisposed                   // Retired, holds no resources
)

var phaseNames = [...]string{
	PhasePreLaunch:     "pre-launch",
	PhaseLaunching:     "launching",
	PhaseLaunchHold:    "launch-hold",
	PhaseExploding:     "exploding",
	PhaseExplosionHold: "explosion-hold",
	PhaseDisposed:      "disposed",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// PhaseAt derives the phase purely from the clock
// Past the end it reports ExplosionHold; the entity decides whether that becomes Disposed
func (t Timing) PhaseAt(clock float64) Phase {
	kl := t.LaunchK(clock)
	ke := t.ExplosionK(clock)
	switch {
	case kl < 0:
		return PhasePreLaunch
	case kl < 1:
		return PhaseLaunching
	case kl < LaunchHoldWindow && ke < 1:
		return PhaseLaunchHold
	case ke < 1:
		return PhaseExploding
	default:
		return PhaseExplosionHold
	}
}

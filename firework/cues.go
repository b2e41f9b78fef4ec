package firework

import (
	"github.com/lixenwraith/fireworks/audio"
	"github.com/lixenwraith/fireworks/trajectory"
)

// CuePlayer plays a cue without blocking, false when it was not queued
type CuePlayer interface {
	Play(cue audio.Cue) bool
}

var launchCues = []audio.Cue{audio.CueWhistle, audio.CueWhistleLow, audio.CueWhoosh}

var explosionCues = [trajectory.ShapeCount][]audio.Cue{
	trajectory.Burst:   {audio.CueBoom, audio.CueBoomDeep},
	trajectory.Drift:   {audio.CueBoomDeep, audio.CueCrackle},
	trajectory.Pop:     {audio.CuePop},
	trajectory.Flash:   {audio.CuePop, audio.CueBoom},
	trajectory.Zap:     {audio.CueZap, audio.CueCrackle},
	trajectory.Flower:  {audio.CueBoom, audio.CueCrackle},
	trajectory.Flower2: {audio.CueBoom, audio.CueCrackle},
}

// pickCues draws the launch and explosion cue for a new firework
func pickCues(shape trajectory.Shape, rng trajectory.Rand) (launch, explosion audio.Cue) {
	pool := explosionCues[trajectory.Burst]
	if shape.Valid() {
		pool = explosionCues[shape]
	}
	return pick(launchCues, rng), pick(pool, rng)
}

func pick(pool []audio.Cue, rng trajectory.Rand) audio.Cue {
	if len(pool) == 0 {
		return audio.CueNone
	}
	if rng == nil {
		return pool[0]
	}
	i := int(rng.Float64() * float64(len(pool)))
	return pool[min(i, len(pool)-1)]
}

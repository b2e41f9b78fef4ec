package audio

import (
	"errors"
	"fmt"
	"time"
)

// Cue is one sound of the fixed cue pool
type Cue uint8

const (
	CueNone        Cue = iota
	CueWhistle         // Rising launch whistle
	CueWhistleLow      // Slower, lower whistle
	CueWhoosh          // Filtered noise launch
	CueBoom            // Low explosion thump with noise tail
	CueBoomDeep        // Longer, deeper boom
	CuePop             // Short bright pop
	CueCrackle         // Burst of crackling clicks
	CueZap             // Descending square chirp
	cueCount
)

var cueNames = [cueCount]string{
	CueNone:       "none",
	CueWhistle:    "whistle",
	CueWhistleLow: "whistle_low",
	CueWhoosh:     "whoosh",
	CueBoom:       "boom",
	CueBoomDeep:   "boom_deep",
	CuePop:        "pop",
	CueCrackle:    "crackle",
	CueZap:        "zap",
}

var cueDurations = [cueCount]time.Duration{
	CueWhistle:    900 * time.Millisecond,
	CueWhistleLow: 1000 * time.Millisecond,
	CueWhoosh:     700 * time.Millisecond,
	CueBoom:       1200 * time.Millisecond,
	CueBoomDeep:   1800 * time.Millisecond,
	CuePop:        250 * time.Millisecond,
	CueCrackle:    1100 * time.Millisecond,
	CueZap:        400 * time.Millisecond,
}

// ErrNotInitialized is returned by operations that need an open output device
var ErrNotInitialized = errors.New("audio: output not initialized")

func (c Cue) Valid() bool {
	return c > CueNone && c < cueCount
}

func (c Cue) String() string {
	if c >= cueCount {
		return fmt.Sprintf("cue(%d)", uint8(c))
	}
	return cueNames[c]
}

// Duration is the length of the rendered cue
func (c Cue) Duration() time.Duration {
	if !c.Valid() {
		return 0
	}
	return cueDurations[c]
}

// Cues returns every playable cue
func Cues() []Cue {
	out := make([]Cue, 0, cueCount-1)
	for c := CueNone + 1; c < cueCount; c++ {
		out = append(out, c)
	}
	return out
}

// Package audio plays the short synthesized cues of launches and explosions
//
// Cues are fire-and-forget: Play adds a one-shot streamer to the mixer and returns.
// Without an output device every call is a silent no-op so the show runs unchanged.
package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// MaxVoices bounds overlapping cues; a crowded show drops new cues instead of clipping
const MaxVoices = 24

// Player mixes cues onto the speaker
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	cache       *cueCache
	volume      float64
	enabled     bool
	initialized bool
	played      int
	dropped     int
}

// NewPlayer creates an uninitialized player, volume in [0, 1]
func NewPlayer(volume float64, seed int64) *Player {
	return &Player{
		mixer:   &beep.Mixer{},
		cache:   newCueCache(seed),
		volume:  clampVolume(volume),
		enabled: true,
	}
}

// Initialize opens the speaker and renders the cue pool, a second call is a no-op
func (p *Player) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: speaker init: %w", err)
	}
	p.cache.preload()
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close silences everything; the speaker itself stays open for the process lifetime
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// Play starts cue and reports whether it was queued
func (p *Player) Play(cue Cue) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || !p.enabled || !cue.Valid() {
		return false
	}
	buf := p.cache.get(cue)
	if buf == nil {
		return false
	}

	speaker.Lock()
	defer speaker.Unlock()
	if p.mixer.Len() >= MaxVoices {
		p.dropped++
		return false
	}
	p.mixer.Add(newVolume(&bufferStreamer{buf: buf}, p.volume))
	p.played++
	return true
}

// SetEnabled mutes or unmutes future cues, playing cues finish
func (p *Player) SetEnabled(on bool) {
	p.mu.Lock()
	p.enabled = on
	p.mu.Unlock()
}

func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// SetVolume applies to cues started afterwards
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = clampVolume(v)
	p.mu.Unlock()
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *Player) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// Stats returns queued and dropped cue counts
func (p *Player) Stats() (played, dropped int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played, p.dropped
}

// newVolume wraps s with a linear gain; zero is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

func clampVolume(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

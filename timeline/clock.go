// Package timeline implements the show clock
//
// The clock is stepped once per frame with the frame time. In recording mode it owns a
// position on a bounded timeline that can play, reverse, loop, scrub and skip between
// markers. In free-run mode the position does not move and fireworks follow wall time.
package timeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/lixenwraith/fireworks/vmath"
)

// Timeline length bounds in ms
const (
	DefaultLength = 30000.0
	MinLength     = 10000.0
	MaxLength     = 60000.0
	LengthStep    = 5000.0
	// SnapDivisor sets the scrub snap threshold as a fraction of the length
	SnapDivisor = 100.0
)

// Mode selects which population the clock drives
type Mode uint8

const (
	ModeFreeRun Mode = iota
	ModeRecording
)

func (m Mode) String() string {
	if m == ModeRecording {
		return "recording"
	}
	return "free-run"
}

// Transport is the motion of the timeline position
type Transport uint8

const (
	Stopped Transport = iota
	Playing
	Reversing
	Scrubbing
)

var transportNames = [...]string{
	Stopped:   "stopped",
	Playing:   "playing",
	Reversing: "reversing",
	Scrubbing: "scrubbing",
}

func (t Transport) String() string {
	if int(t) < len(transportNames) {
		return transportNames[t]
	}
	return fmt.Sprintf("transport(%d)", uint8(t))
}

// Skip is a one-shot jump command
type Skip uint8

const (
	SkipNone Skip = iota
	SkipForward
	SkipBack
	SkipStart
	SkipEnd
)

// Step reports what one Advance did
type Step struct {
	Position float64
	Delta    float64 // Frame delta in ms
	// Jumped is set for discontinuous moves (scrub, skip, loop wrap)
	Jumped bool
	// Snapped holds the marker a scrub docked onto
	Snapped  bool
	SnapTime float64
	// Ended is set on the frame playback reached the end without looping
	Ended bool
	// Wrapped is set when looping playback went from the end back to 0
	Wrapped bool
}

// Clock is the timeline state; it is owned by the frame loop and not safe for concurrent use
type Clock struct {
	position  float64
	length    float64
	mode      Mode
	transport Transport
	loop      bool

	pending   Skip
	scrubFrac float64

	lastFrame float64
	hasFrame  bool
}

func NewClock() *Clock {
	return &Clock{length: DefaultLength}
}

func (c *Clock) Position() float64      { return c.position }
func (c *Clock) Length() float64        { return c.length }
func (c *Clock) Mode() Mode             { return c.mode }
func (c *Clock) Transport() Transport   { return c.transport }
func (c *Clock) Loop() bool             { return c.loop }
func (c *Clock) Recording() bool        { return c.mode == ModeRecording }
func (c *Clock) SetLoop(loop bool)      { c.loop = loop }
func (c *Clock) SetMode(m Mode)         { c.mode = m }
func (c *Clock) PendingSkip() Skip      { return c.pending }
func (c *Clock) SnapThreshold() float64 { return c.length / SnapDivisor }

// Play starts forward playback, from 0 when parked at the end
func (c *Clock) Play() {
	if c.position >= c.length {
		c.position = 0
	}
	c.transport = Playing
}

// Reverse starts backward playback
func (c *Clock) Reverse() {
	c.transport = Reversing
}

// Pause stops any motion
func (c *Clock) Pause() {
	c.transport = Stopped
}

// TogglePlay flips between playing and stopped
func (c *Clock) TogglePlay() {
	if c.transport == Playing {
		c.Pause()
		return
	}
	c.Play()
}

// RequestSkip queues a jump consumed by the next Advance
func (c *Clock) RequestSkip(s Skip) {
	c.pending = s
}

// BeginScrub enters scrubbing at frac of the timeline width
func (c *Clock) BeginScrub(frac float64) {
	c.transport = Scrubbing
	c.scrubFrac = vmath.Clamp01(frac)
}

// ScrubTo moves the scrub pointer, ignored when not scrubbing
func (c *Clock) ScrubTo(frac float64) {
	if c.transport != Scrubbing {
		return
	}
	c.scrubFrac = vmath.Clamp01(frac)
}

// EndScrub leaves the position where the gesture ended
func (c *Clock) EndScrub() {
	if c.transport == Scrubbing {
		c.transport = Stopped
	}
}

// Seek sets the position directly, clamped to the timeline
func (c *Clock) Seek(ms float64) {
	c.position = vmath.Clamp(ms, 0, c.length)
}

// SetLength clamps to [MinLength, MaxLength] in whole seconds and keeps the position inside
func (c *Clock) SetLength(ms float64) {
	c.length = ClampLength(ms)
	c.position = math.Min(c.position, c.length)
}

// StepLength changes the length by n steps
func (c *Clock) StepLength(n int) {
	c.SetLength(c.length + float64(n)*LengthStep)
}

// ClampLength rounds to whole seconds inside the legal range
func ClampLength(ms float64) float64 {
	if math.IsNaN(ms) {
		return DefaultLength
	}
	ms = math.Round(ms/1000) * 1000
	return vmath.Clamp(ms, MinLength, MaxLength)
}

// Advance steps the clock to frameTime ms; markers are the explosion times of recorded fireworks
func (c *Clock) Advance(frameTime float64, markers []float64) Step {
	delta := 0.0
	if c.hasFrame {
		delta = math.Max(frameTime-c.lastFrame, 0)
	}
	c.lastFrame, c.hasFrame = frameTime, true

	st := Step{Delta: delta}
	if c.mode != ModeRecording {
		st.Position = c.position
		return st
	}

	switch {
	case c.transport == Scrubbing:
		raw := c.scrubFrac * c.length
		pos, snapped := Snap(raw, markers, c.SnapThreshold())
		st.Jumped = pos != c.position
		st.Snapped = snapped
		st.SnapTime = pos
		c.position = pos

	case c.pending != SkipNone:
		prev := c.position
		c.position = c.skipTarget(c.pending, markers)
		c.pending = SkipNone
		st.Jumped = c.position != prev

	case c.transport == Playing:
		c.position += delta
		if c.position >= c.length {
			c.position = 0
			st.Jumped = true
			st.Wrapped = c.loop
			if !c.loop {
				c.transport = Stopped
				st.Ended = true
			}
		}

	case c.transport == Reversing:
		c.position -= delta
		if c.position <= 0 {
			c.position = 0
			c.transport = Stopped
		}
	}

	st.Position = c.position
	return st
}

func (c *Clock) skipTarget(s Skip, markers []float64) float64 {
	switch s {
	case SkipStart:
		return 0
	case SkipEnd:
		return c.length
	case SkipForward:
		if m, ok := NextMarker(c.position, markers); ok && m <= c.length {
			return m
		}
		return c.length
	case SkipBack:
		if m, ok := PrevMarker(c.position, markers); ok && m >= 0 {
			return m
		}
		return 0
	}
	return c.position
}

// Snap docks raw onto the nearest marker within threshold
func Snap(raw float64, markers []float64, threshold float64) (float64, bool) {
	best, bestD := raw, math.Inf(1)
	for _, m := range markers {
		if d := math.Abs(m - raw); d <= threshold && d < bestD {
			best, bestD = m, d
		}
	}
	return best, !math.IsInf(bestD, 1)
}

// NextMarker is the smallest marker strictly after t
func NextMarker(t float64, markers []float64) (float64, bool) {
	best, ok := math.Inf(1), false
	for _, m := range markers {
		if m > t && m < best {
			best, ok = m, true
		}
	}
	return best, ok
}

// PrevMarker is the largest marker strictly before t
func PrevMarker(t float64, markers []float64) (float64, bool) {
	best, ok := math.Inf(-1), false
	for _, m := range markers {
		if m < t && m > best {
			best, ok = m, true
		}
	}
	return best, ok
}

// SortedMarkers returns a sorted copy without duplicates
func SortedMarkers(markers []float64) []float64 {
	out := append([]float64(nil), markers...)
	sort.Float64s(out)
	n := 0
	for i, m := range out {
		if i == 0 || m != out[n-1] {
			out[n] = m
			n++
		}
	}
	return out[:n]
}

// Widget maps a pointer column onto the timeline
type Widget struct {
	X     float64
	Width float64
}

// Fraction maps x into [0, 1] across the widget
func (w Widget) Fraction(x float64) float64 {
	if w.Width <= 1 {
		return 0
	}
	return vmath.Clamp01((x - w.X) / (w.Width - 1))
}

// Contains reports whether the column lies on the widget
func (w Widget) Contains(x float64) bool {
	return x >= w.X && x < w.X+w.Width
}

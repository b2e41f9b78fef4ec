// Package engine owns a fireworks show: the timeline clock, the recorded and free-run
// fireworks, the template for the next firework and the share URL state
//
// Engine is driven from a single frame loop. Input handlers and the frame call into it from
// the same goroutine; nothing here is safe for concurrent use.
package engine

import (
	"errors"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/fireworks/audio"
	"github.com/lixenwraith/fireworks/firework"
	"github.com/lixenwraith/fireworks/logging"
	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/render"
	"github.com/lixenwraith/fireworks/status"
	"github.com/lixenwraith/fireworks/timeline"
)

// ErrUnknownFirework is returned for ids that were never recorded or have been removed
var ErrUnknownFirework = errors.New("engine: unknown firework")

// AudioPlayer plays a cue without blocking
type AudioPlayer interface {
	Play(cue audio.Cue) bool
}

// Afterimage is the trail blending of the display, suppressed for one frame on clock jumps
type Afterimage interface {
	Suppress()
}

// Options wires an engine to its collaborators; Mapper and Renderer are required
type Options struct {
	Mapper     *projection.Mapper
	Renderer   render.Renderer
	Audio      AudioPlayer
	Afterimage Afterimage
	Time       timeline.TimeProvider
	Status     *status.Registry
	Logger     zerolog.Logger
	Seed       int64
	// Debounce is how long the show must stay unchanged before the share query is emitted
	Debounce time.Duration
	// OnShare receives every emitted share query
	OnShare func(query string)
}

// Frame summarizes one Update
type Frame struct {
	Step     timeline.Step
	Cues     int
	Recorded int // Active recorded fireworks
	FreeRun  int // Free-run fireworks still in flight
}

// Engine is the show orchestrator
type Engine struct {
	// ===== Collaborators =====
	mapper   *projection.Mapper
	renderer render.Renderer
	cues     firework.CuePlayer
	after    Afterimage
	time     timeline.TimeProvider
	epoch    time.Time
	rng      *rand.Rand
	log      zerolog.Logger

	// ===== Show State =====
	clock     *timeline.Clock
	recorded  []*firework.Firework // Index is the firework id, removed entries stay in place
	freeRun   []*firework.Firework
	nextFree  int
	nightSky  bool
	template  Template
	lastFrame float64

	// ===== Pointer State =====
	field   render.Rect
	bar     render.Rect
	gesture gesture
	pointer projection.Normalized
	hasPtr  bool

	// ===== Share URL =====
	sync    *URLSync
	onShare func(string)

	metrics metrics
}

// metrics caches registry pointers so the frame path never takes the table lock
type metrics struct {
	frames    *atomic.Int64
	total     *atomic.Int64
	cues      *atomic.Int64
	urlWrites *atomic.Int64
	live      *status.Gauge
	clockTime *status.Gauge
	length    *status.Gauge
	delta     *status.Gauge
	mode      *status.Label
	shape     *status.Label
	recording *atomic.Bool
	looping   *atomic.Bool
	nightSky  *atomic.Bool
}

// New creates an engine in free-run mode with the default template
func New(opts Options) *Engine {
	tp := opts.Time
	if tp == nil {
		tp = timeline.NewWallClock()
	}
	reg := opts.Status
	if reg == nil {
		reg = status.NewRegistry()
	}

	e := &Engine{
		mapper:   opts.Mapper,
		renderer: opts.Renderer,
		after:    opts.Afterimage,
		time:     tp,
		epoch:    tp.Now(),
		rng:      rand.New(rand.NewSource(opts.Seed)),
		log:      logging.Component(opts.Logger, "engine"),
		clock:    timeline.NewClock(),
		template: DefaultTemplate(),
		sync:     NewURLSync(opts.Debounce),
		onShare:  opts.OnShare,
	}
	if opts.Audio != nil {
		e.cues = opts.Audio
	}

	e.metrics = metrics{
		frames:    reg.Counters.Get(status.FramesRendered),
		total:     reg.Counters.Get(status.FireworksTotal),
		cues:      reg.Counters.Get(status.CuesPlayed),
		urlWrites: reg.Counters.Get(status.URLWrites),
		live:      reg.Gauges.Get(status.FireworksLive),
		clockTime: reg.Gauges.Get(status.ClockTime),
		length:    reg.Gauges.Get(status.ClockLength),
		delta:     reg.Gauges.Get(status.FrameDelta),
		mode:      reg.Labels.Get(status.ClockMode),
		shape:     reg.Labels.Get(status.TemplateShape),
		recording: reg.Flags.Get(status.EngineRecording),
		looping:   reg.Flags.Get(status.EngineLooping),
		nightSky:  reg.Flags.Get(status.EngineNightSky),
	}
	e.publishState()
	return e
}

// Update advances the show to frameTime ms and re-evaluates every firework
func (e *Engine) Update(frameTime float64) Frame {
	e.lastFrame = frameTime
	st := e.clock.Advance(frameTime, e.Markers())

	if st.Jumped && e.after != nil {
		e.after.Suppress()
	}
	if st.Ended {
		e.log.Debug().Float64("length_ms", e.clock.Length()).Msg("playback reached end")
	}

	fr := Frame{Step: st}

	// Cue flags still advance on jumps and while dragging, only the sound is dropped
	// A loop wrap is a new pass: cues re-arm and stay audible
	cues := e.cues
	if (st.Jumped && !st.Wrapped) || e.clock.Transport() == timeline.Scrubbing {
		cues = nil
	}

	if e.clock.Recording() {
		for _, f := range e.recorded {
			if !f.State.Active {
				continue
			}
			if st.Wrapped {
				f.RearmCues()
			}
			fr.Cues += f.Evaluate(st.Position, cues)
			fr.Recorded++
		}
	}

	wall := e.WallTime()
	n := 0
	for _, f := range e.freeRun {
		fr.Cues += f.Evaluate(wall, e.cues)
		if f.State.Active {
			e.freeRun[n] = f
			n++
		}
	}
	clear(e.freeRun[n:])
	e.freeRun = e.freeRun[:n]
	fr.FreeRun = n

	if q, ok := e.sync.Poll(frameTime, e.ShareQuery); ok {
		e.metrics.urlWrites.Add(1)
		e.log.Debug().Int("bytes", len(q)).Msg("share query updated")
		if e.onShare != nil {
			e.onShare(q)
		}
	}

	e.metrics.frames.Add(1)
	e.metrics.cues.Add(int64(fr.Cues))
	e.metrics.live.Set(float64(fr.Recorded + fr.FreeRun))
	e.metrics.clockTime.Set(st.Position)
	e.metrics.delta.Set(st.Delta)
	return fr
}

// park releases the visuals of a recorded firework without retiring it
func park(f *firework.Firework) {
	if f.State.Active {
		f.Evaluate(math.Inf(-1), nil)
	}
}

// WallTime is the free-run clock in ms since the engine started
func (e *Engine) WallTime() float64 {
	return timeline.Millis(e.epoch, e.time.Now())
}

// Markers returns the distinct explosion times of the active recorded fireworks, ascending
func (e *Engine) Markers() []float64 {
	out := make([]float64, 0, len(e.recorded))
	for _, f := range e.recorded {
		if f.State.Active {
			out = append(out, f.ExplosionTime())
		}
	}
	return timeline.SortedMarkers(out)
}

// Clock exposes the timeline for read access by the UI
func (e *Engine) Clock() *timeline.Clock {
	return e.clock
}

// Mapper returns the coordinate collaborator
func (e *Engine) Mapper() *projection.Mapper {
	return e.mapper
}

// ===== Transport =====

func (e *Engine) Play()        { e.clock.Play(); e.publishState() }
func (e *Engine) Pause()       { e.clock.Pause(); e.publishState() }
func (e *Engine) Reverse()     { e.clock.Reverse(); e.publishState() }
func (e *Engine) TogglePlay()  { e.clock.TogglePlay(); e.publishState() }
func (e *Engine) SkipForward() { e.clock.RequestSkip(timeline.SkipForward) }
func (e *Engine) SkipBack()    { e.clock.RequestSkip(timeline.SkipBack) }
func (e *Engine) SkipToStart() { e.clock.RequestSkip(timeline.SkipStart) }
func (e *Engine) SkipToEnd()   { e.clock.RequestSkip(timeline.SkipEnd) }

// ScrubTo starts or continues a scrub at frac of the timeline
func (e *Engine) ScrubTo(frac float64) {
	if e.clock.Transport() == timeline.Scrubbing {
		e.clock.ScrubTo(frac)
		return
	}
	e.clock.BeginScrub(frac)
}

// EndScrub leaves the clock where the scrub ended
func (e *Engine) EndScrub() {
	e.clock.EndScrub()
}

// StepLength changes the show length by n steps of 5 s
func (e *Engine) StepLength(n int) {
	e.SetLength(e.clock.Length() + float64(n)*timeline.LengthStep)
}

// SetLength sets the show length in ms, clamped
// Recorded fireworks keep their absolute explosion time; those past a shorter end are
// pinned to it with the launch moved earlier
func (e *Engine) SetLength(ms float64) {
	prev := e.clock.Length()
	e.clock.SetLength(ms)
	length := e.clock.Length()
	if length == prev {
		e.publishState()
		return
	}
	if length < prev {
		e.pinToLength(length)
	}
	e.markDirty()
	e.publishState()
}

// pinToLength rebuilds every recorded firework exploding after length so it explodes at length
func (e *Engine) pinToLength(length float64) {
	for id, f := range e.recorded {
		if !f.State.Active || f.ExplosionTime() <= length {
			continue
		}
		from := f.ExplosionTime()
		f.Dispose()
		e.recorded[id] = firework.New(id, f.Params, firework.TimingForExplosion(length, f.Params.Shape), true, e.deps())
		e.log.Debug().Int("id", id).Float64("from_ms", from).Float64("explosion_ms", length).Msg("firework pinned to show end")
	}
}

// SetRecording switches between the timeline and free-run
// Leaving the timeline releases every recorded visual; the fireworks stay in the show
func (e *Engine) SetRecording(on bool) {
	if on == e.clock.Recording() {
		return
	}
	if on {
		e.clock.SetMode(timeline.ModeRecording)
	} else {
		e.clock.Pause()
		e.clock.SetMode(timeline.ModeFreeRun)
		for _, f := range e.recorded {
			park(f)
		}
	}
	e.log.Info().Bool("recording", on).Msg("mode changed")
	e.publishState()
}

func (e *Engine) SetLoop(on bool) {
	if e.clock.Loop() != on {
		e.clock.SetLoop(on)
		e.markDirty()
	}
	e.publishState()
}

func (e *Engine) SetNightSky(on bool) {
	if e.nightSky != on {
		e.nightSky = on
		e.markDirty()
	}
	e.publishState()
}

func (e *Engine) NightSky() bool { return e.nightSky }

// SetAspect records a viewport resize; targets follow on the next Update
func (e *Engine) SetAspect(aspect float64) {
	e.mapper.SetAspect(aspect)
	e.log.Debug().Float64("aspect", e.mapper.Aspect()).Msg("viewport resized")
}

func (e *Engine) publishState() {
	m := e.metrics
	m.mode.Set(e.clock.Mode().String() + "/" + e.clock.Transport().String())
	m.length.Set(e.clock.Length())
	m.recording.Store(e.clock.Recording())
	m.looping.Store(e.clock.Loop())
	m.nightSky.Store(e.nightSky)
	m.shape.Set(e.template.Params.Shape.String())
}

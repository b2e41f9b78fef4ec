package engine

import (
	"fmt"

	"github.com/lixenwraith/fireworks/codec"
	"github.com/lixenwraith/fireworks/firework"
	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/trajectory"
)

// OutlineEntry is one row of the outliner
type OutlineEntry struct {
	ID            int                   `json:"id" yaml:"id"`
	Shape         trajectory.Shape      `json:"shape" yaml:"shape"`
	Position      projection.Normalized `json:"position" yaml:"position"`
	ExplosionTime float64               `json:"explosion_ms" yaml:"explosion_ms"`
	Phase         firework.Phase        `json:"-" yaml:"-"`
	Visible       bool                  `json:"visible" yaml:"visible"`
}

func (e *Engine) deps() firework.Deps {
	return firework.Deps{Mapper: e.mapper, Renderer: e.renderer, Rand: e.rng}
}

// CreateFirework launches a firework from the template toward pos
// On the timeline the shell launches at the playhead and the firework is recorded;
// in free-run it flies once on the wall clock. The returned id is only meaningful for
// recorded fireworks.
func (e *Engine) CreateFirework(pos projection.Normalized) (id int, recorded bool) {
	p := e.template.next(e.rng)
	e.publishState()
	p.Position = clampPosition(pos)
	p.Aspect = e.mapper.Aspect()
	e.pointer, e.hasPtr = p.Position, true

	if !e.clock.Recording() {
		f := firework.New(e.nextFree, p, firework.NewTiming(e.WallTime(), p.Shape), false, e.deps())
		e.nextFree++
		e.freeRun = append(e.freeRun, f)
		e.metrics.total.Add(1)
		e.log.Debug().Str("shape", p.Shape.String()).Msg("free-run firework launched")
		return f.ID, false
	}

	explosion := min(e.clock.Position()+firework.LaunchDuration, e.clock.Length())
	return e.AddRecorded(p, explosion), true
}

// AddRecorded appends a recorded firework that explodes at explosion ms
func (e *Engine) AddRecorded(p firework.Params, explosion float64) int {
	p = p.Clamped()
	id := len(e.recorded)
	f := firework.New(id, p, firework.TimingForExplosion(explosion, p.Shape), true, e.deps())
	e.recorded = append(e.recorded, f)
	e.metrics.total.Add(1)
	e.markDirty()

	e.log.Debug().
		Int("id", id).
		Str("shape", p.Shape.String()).
		Float64("explosion_ms", explosion).
		Msg("firework recorded")
	return id
}

// EditFirework replaces the params of a recorded firework
// The old firework is disposed and a new one is built with the same id and launch time
func (e *Engine) EditFirework(id int, p firework.Params) error {
	old, err := e.lookup(id)
	if err != nil {
		return err
	}
	old.Dispose()

	p = p.Clamped()
	timing := firework.NewTiming(old.Timing.LaunchStart, p.Shape)
	e.recorded[id] = firework.New(id, p, timing, true, e.deps())
	e.markDirty()
	e.log.Debug().Int("id", id).Str("shape", p.Shape.String()).Msg("firework edited")
	return nil
}

// RemoveFirework disposes a recorded firework immediately; removing twice is a no-op
// The slot stays in the list so other ids do not shift
func (e *Engine) RemoveFirework(id int) bool {
	if id < 0 || id >= len(e.recorded) {
		return false
	}
	f := e.recorded[id]
	wasActive := f.State.Active
	f.Dispose()
	if wasActive {
		e.markDirty()
		e.log.Debug().Int("id", id).Msg("firework removed")
	}
	return wasActive
}

// Firework returns a recorded firework by id
func (e *Engine) Firework(id int) (*firework.Firework, error) {
	return e.lookup(id)
}

func (e *Engine) lookup(id int) (*firework.Firework, error) {
	if id < 0 || id >= len(e.recorded) || !e.recorded[id].State.Active {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFirework, id)
	}
	return e.recorded[id], nil
}

// Visible returns the ids of recorded fireworks holding visuals at the current position
func (e *Engine) Visible() []int {
	var ids []int
	for _, f := range e.recorded {
		if f.State.Active && f.LiveHandles() > 0 {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// FreeRunCount is the number of free-run fireworks in flight
func (e *Engine) FreeRunCount() int {
	return len(e.freeRun)
}

// Outline lists the active recorded fireworks in id order
func (e *Engine) Outline() []OutlineEntry {
	out := make([]OutlineEntry, 0, len(e.recorded))
	for _, f := range e.recorded {
		if !f.State.Active {
			continue
		}
		out = append(out, OutlineEntry{
			ID:            f.ID,
			Shape:         f.Params.Shape,
			Position:      f.Params.Position,
			ExplosionTime: f.ExplosionTime(),
			Phase:         f.State.Phase,
			Visible:       f.LiveHandles() > 0,
		})
	}
	return out
}

// LastPosition is the position readout: the pointer over the field or the last launch
func (e *Engine) LastPosition() (projection.Normalized, bool) {
	return e.pointer, e.hasPtr
}

// PositionReadout formats LastPosition for the status bar
func (e *Engine) PositionReadout() string {
	if !e.hasPtr {
		return "POSITION: X: - Y: -"
	}
	x, y := e.pointer.Rounded()
	return fmt.Sprintf("POSITION: X: %d Y: %d", x, y)
}

// ===== Show Persistence =====

// Snapshot captures the recorded show for the codec
func (e *Engine) Snapshot() codec.Show {
	s := codec.Show{
		LengthSeconds: int(e.clock.Length() / 1000),
		Loop:          e.clock.Loop(),
		NightSky:      e.nightSky,
		Entries:       []codec.Entry{},
	}
	for _, f := range e.recorded {
		if !f.State.Active {
			continue
		}
		s.Entries = append(s.Entries, codec.Entry{Params: f.Params, ExplosionTime: f.ExplosionTime()})
	}
	return s
}

// ShareQuery encodes the current show as a URL query string
func (e *Engine) ShareQuery() string {
	return codec.EncodeQuery(e.Snapshot()).Encode()
}

// LoadShow replaces the recorded show
// A show with fireworks switches the engine to the timeline, stopped at 0
func (e *Engine) LoadShow(s codec.Show) {
	for _, f := range e.recorded {
		f.Dispose()
	}
	clear(e.recorded)
	e.recorded = e.recorded[:0]

	e.clock.SetLength(s.LengthMS())
	e.clock.SetLoop(s.Loop)
	e.clock.Pause()
	e.clock.Seek(0)
	e.nightSky = s.NightSky

	for _, entry := range s.Entries {
		e.AddRecorded(entry.Params, entry.ExplosionTime)
	}
	if len(s.Entries) > 0 {
		e.SetRecording(true)
	}

	e.sync.Reset(codec.EncodeQuery(s).Encode())
	e.publishState()
	e.log.Info().
		Int("fireworks", len(s.Entries)).
		Int("length_s", s.LengthSeconds).
		Msg("show loaded")
}

// LoadQuery decodes a share query and loads it
// Invalid tokens are skipped; the returned error is advisory and the valid part is loaded
func (e *Engine) LoadQuery(raw string) error {
	s, present, err := codec.ParseURL(raw)
	if present {
		e.LoadShow(s)
	}
	if err != nil {
		e.log.Warn().Err(err).Msg("show partially loaded")
	}
	return err
}

func (e *Engine) markDirty() {
	e.sync.Mark(e.lastFrame)
}

func clampPosition(p projection.Normalized) projection.Normalized {
	return projection.Normalized{
		X: min(max(p.X, 0), 100),
		Y: min(max(p.Y, 0), 100),
	}
}

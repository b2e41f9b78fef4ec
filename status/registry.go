// Package status keeps the live counters of a running show
//
// The engine caches metric pointers once and writes to them every frame; the status bar,
// the preview server and the debug log read them through Snapshot.
package status

import "sync/atomic"

// Well-known metric names
const (
	FramesRendered  = "frames.rendered"
	FireworksLive   = "fireworks.live"
	FireworksTotal  = "fireworks.total"
	VisualsCreated  = "visuals.created"
	VisualsDisposed = "visuals.disposed"
	CuesPlayed      = "audio.cues"
	URLWrites       = "urlsync.writes"
	PreviewClients  = "preview.clients"
	ClockTime       = "clock.time_ms"
	ClockLength     = "clock.length_ms"
	FrameDelta      = "frame.delta_ms"
	ClockMode       = "clock.mode"
	EngineRecording = "engine.recording"
	EngineLooping   = "engine.looping"
	EngineNightSky  = "engine.night_sky"
	TemplateShape   = "template.shape"
)

// Registry groups typed metric tables
type Registry struct {
	Counters *Table[atomic.Int64]
	Gauges   *Table[Gauge]
	Flags    *Table[atomic.Bool]
	Labels   *Table[Label]
}

func NewRegistry() *Registry {
	return &Registry{
		Counters: NewTable[atomic.Int64](),
		Gauges:   NewTable[Gauge](),
		Flags:    NewTable[atomic.Bool](),
		Labels:   NewTable[Label](),
	}
}

// Snapshot is a point-in-time copy of every metric
type Snapshot struct {
	Counters map[string]int64   `json:"counters" yaml:"counters"`
	Gauges   map[string]float64 `json:"gauges" yaml:"gauges"`
	Flags    map[string]bool    `json:"flags" yaml:"flags"`
	Labels   map[string]string  `json:"labels" yaml:"labels"`
}

// Snapshot copies current values; individual reads are atomic, the set as a whole is not
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{
		Counters: make(map[string]int64, r.Counters.Len()),
		Gauges:   make(map[string]float64, r.Gauges.Len()),
		Flags:    make(map[string]bool, r.Flags.Len()),
		Labels:   make(map[string]string, r.Labels.Len()),
	}
	r.Counters.Range(func(n string, v *atomic.Int64) { s.Counters[n] = v.Load() })
	r.Gauges.Range(func(n string, v *Gauge) { s.Gauges[n] = v.Get() })
	r.Flags.Range(func(n string, v *atomic.Bool) { s.Flags[n] = v.Load() })
	r.Labels.Range(func(n string, v *Label) { s.Labels[n] = v.Get() })
	return s
}

// Total returns the number of registered metrics
func (r *Registry) Total() int {
	return r.Counters.Len() + r.Gauges.Len() + r.Flags.Len() + r.Labels.Len()
}

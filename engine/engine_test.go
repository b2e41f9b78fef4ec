package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fireworks/audio"
	"github.com/lixenwraith/fireworks/codec"
	"github.com/lixenwraith/fireworks/firework"
	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/render"
	"github.com/lixenwraith/fireworks/status"
	"github.com/lixenwraith/fireworks/timeline"
	"github.com/lixenwraith/fireworks/trajectory"
	"github.com/lixenwraith/fireworks/vmath"
)

type mockAudio struct {
	played []audio.Cue
}

func (m *mockAudio) Play(c audio.Cue) bool {
	m.played = append(m.played, c)
	return true
}

type mockAfterimage struct {
	suppressed int
}

func (m *mockAfterimage) Suppress() { m.suppressed++ }

type harness struct {
	engine *Engine
	scene  *render.Scene
	audio  *mockAudio
	after  *mockAfterimage
	time   *timeline.MockTimeProvider
	shares []string
	reg    *status.Registry
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		scene: render.NewScene(),
		audio: &mockAudio{},
		after: &mockAfterimage{},
		time:  timeline.NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		reg:   status.NewRegistry(),
	}
	h.engine = New(Options{
		Mapper:     projection.New(1.6),
		Renderer:   h.scene,
		Audio:      h.audio,
		Afterimage: h.after,
		Time:       h.time,
		Status:     h.reg,
		Logger:     zerolog.Nop(),
		Seed:       1,
		Debounce:   100 * time.Millisecond,
		OnShare:    func(q string) { h.shares = append(h.shares, q) },
	})
	return h
}

func burstParams() firework.Params {
	return firework.Params{
		Shape:          trajectory.Burst,
		LaunchColor:    vmath.ColorWhite,
		NearColor:      vmath.ColorRed,
		FarColor:       vmath.ColorBlue,
		Scale:          1,
		LaunchAudio:    true,
		ExplosionAudio: true,
		Position:       projection.Normalized{X: 50, Y: 50},
		Aspect:         1.6,
	}
}

func (h *harness) visuals(owner int, kind render.Kind) []render.Visual {
	var out []render.Visual
	h.scene.Each(func(v *render.Visual) {
		if v.Owner == owner && v.Kind == kind {
			out = append(out, *v)
		}
	})
	return out
}

func assertVecNear(t *testing.T, want, got vmath.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
	assert.InDelta(t, want.Z, got.Z, 1e-9)
}

func TestEngine_ScrubToExplosionShowsTerminalPose(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetRecording(true)
	e.SetLength(10000)
	id := e.AddRecorded(burstParams(), 5000)

	e.ScrubTo(0.5)
	fr := e.Update(16)
	require.True(t, fr.Step.Snapped)
	assert.Equal(t, 5000.0, fr.Step.Position)
	assert.Equal(t, 1, h.after.suppressed, "jump suppresses the afterimage")

	f, err := e.Firework(id)
	require.NoError(t, err)
	assert.Equal(t, firework.SlotLive, f.LaunchSlot())
	for _, s := range f.FragmentSlots() {
		assert.Equal(t, firework.SlotLive, s)
	}

	shells := h.visuals(id, render.KindProjectile)
	require.Len(t, shells, 1)
	assertVecNear(t, f.Target, shells[0].Position)
	assert.True(t, shells[0].Visible)

	shrapnel := h.visuals(id, render.KindShrapnel)
	require.Len(t, shrapnel, trajectory.Burst.Profile().Fragments)
	for _, v := range shrapnel {
		assertVecNear(t, f.Target, v.Position)
	}

	// pose holds after the drag ends, the snap docked at kl == 1
	e.EndScrub()
	e.Update(32)
	shells = h.visuals(id, render.KindProjectile)
	require.Len(t, shells, 1)
	assertVecNear(t, f.Target, shells[0].Position)
	assert.Equal(t, []int{id}, e.Visible())
	assert.Empty(t, h.audio.played, "no cues while scrubbing")
}

func TestEngine_PopulationsAreIndependent(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetRecording(true)
	id := e.AddRecorded(burstParams(), 5000)

	e.Clock().Seek(4500)
	e.Update(0)
	assert.Equal(t, []int{id}, e.Visible())

	e.SetRecording(false)
	assert.Empty(t, e.Visible())
	assert.Zero(t, h.scene.Len(), "leaving the timeline parks recorded visuals")

	_, recorded := e.CreateFirework(projection.Normalized{X: 30, Y: 70})
	assert.False(t, recorded)
	assert.Equal(t, 1, e.FreeRunCount())

	fr := e.Update(16)
	assert.Equal(t, 1, fr.FreeRun)
	assert.Zero(t, fr.Recorded)
	assert.Positive(t, h.scene.Len())
	assert.Empty(t, e.Visible())

	h.time.Advance(5 * time.Second)
	fr = e.Update(5016)
	assert.Zero(t, fr.FreeRun)
	assert.Zero(t, h.scene.Len())
	require.Len(t, e.Outline(), 1, "free-run retirement leaves the show alone")

	e.SetRecording(true)
	e.Update(5032)
	assert.Equal(t, []int{id}, e.Visible(), "recorded firework comes back at the playhead")
}

func TestEngine_RemoveTwice(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetRecording(true)
	id := e.AddRecorded(burstParams(), 5000)
	other := e.AddRecorded(burstParams(), 9000)

	e.Clock().Seek(5200)
	e.Update(0)
	require.Positive(t, h.scene.Len())

	assert.True(t, e.RemoveFirework(id))
	assert.Zero(t, h.scene.Len())
	assert.False(t, e.RemoveFirework(id))
	assert.False(t, e.RemoveFirework(42))
	assert.Zero(t, h.scene.Stats().Stale)

	_, err := e.Firework(id)
	assert.ErrorIs(t, err, ErrUnknownFirework)
	assert.ErrorIs(t, e.EditFirework(id, burstParams()), ErrUnknownFirework)

	outline := e.Outline()
	require.Len(t, outline, 1)
	assert.Equal(t, other, outline[0].ID, "ids stay stable after removal")
	assert.Equal(t, []float64{9000}, e.Markers())
}

func TestEngine_EditKeepsIdAndTiming(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetRecording(true)
	id := e.AddRecorded(burstParams(), 5000)

	e.Clock().Seek(5100)
	e.Update(0)
	before := h.scene.Stats().Created

	p := burstParams()
	p.Shape = trajectory.Pop
	require.NoError(t, e.EditFirework(id, p))

	f, err := e.Firework(id)
	require.NoError(t, err)
	assert.Equal(t, trajectory.Pop, f.Params.Shape)
	assert.Equal(t, 5000.0, f.ExplosionTime())
	assert.Equal(t, id, f.ID)
	assert.Zero(t, h.scene.Len(), "old visuals disposed before the replacement allocates")

	e.Update(16)
	assert.Greater(t, h.scene.Stats().Created, before)
	assert.Len(t, h.visuals(id, render.KindBurstPath), 0, "pop has no trails")
}

func TestEngine_ShrinkingLengthPinsExplosions(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetLength(60000)
	late := e.AddRecorded(burstParams(), 50000)
	early := e.AddRecorded(burstParams(), 4000)

	e.SetLength(10000)
	require.Equal(t, 10000.0, e.Clock().Length())
	assert.Equal(t, []float64{4000, 10000}, e.Markers())

	f, err := e.Firework(late)
	require.NoError(t, err)
	assert.Equal(t, late, f.ID)
	assert.Equal(t, 9000.0, f.Timing.LaunchStart)
	g, err := e.Firework(early)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, g.ExplosionTime())

	show, present, err := codec.ParseURL(e.ShareQuery())
	require.NoError(t, err)
	require.True(t, present)
	require.Len(t, show.Entries, 2)
	assert.InDelta(t, f.ExplosionTime(), show.Entries[0].ExplosionTime, 1e-6)
	assert.InDelta(t, g.ExplosionTime(), show.Entries[1].ExplosionTime, 1e-6)

	// Growing again keeps the pinned times
	e.SetLength(20000)
	assert.Equal(t, []float64{4000, 10000}, e.Markers())
}

func TestEngine_MarkersSortedDistinct(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.AddRecorded(burstParams(), 8000)
	e.AddRecorded(burstParams(), 3000)
	dup := e.AddRecorded(burstParams(), 8000)
	assert.Equal(t, []float64{3000, 8000}, e.Markers())

	e.RemoveFirework(dup)
	assert.Equal(t, []float64{3000, 8000}, e.Markers())
	e.RemoveFirework(0)
	assert.Equal(t, []float64{3000}, e.Markers())
}

func TestEngine_CreateOnTimeline(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetRecording(true)
	e.SetRandomize(false)

	e.Clock().Seek(2000)
	id, recorded := e.CreateFirework(projection.Normalized{X: 120, Y: -5})
	require.True(t, recorded)
	f, err := e.Firework(id)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, f.ExplosionTime())
	assert.Equal(t, projection.Normalized{X: 100, Y: 0}, f.Params.Position)
	assert.Equal(t, 1.6, f.Params.Aspect)

	e.Clock().Seek(29800)
	id, _ = e.CreateFirework(projection.Normalized{X: 50, Y: 50})
	f, _ = e.Firework(id)
	assert.Equal(t, 30000.0, f.ExplosionTime(), "explosion clamps to the show length")
	assert.Equal(t, int64(2), h.reg.Counters.Get(status.FireworksTotal).Load())
}

func TestEngine_PlaybackCues(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetRecording(true)
	e.SetLength(10000)
	e.AddRecorded(burstParams(), 1050)

	e.Play()
	e.Update(0)
	e.Update(100)
	require.Len(t, h.audio.played, 1)
	assert.Contains(t, []audio.Cue{audio.CueWhistle, audio.CueWhistleLow, audio.CueWhoosh}, h.audio.played[0])

	e.Update(200)
	assert.Len(t, h.audio.played, 1, "launch cue plays once per pass")

	e.Update(1100)
	assert.Len(t, h.audio.played, 2, "explosion cue")
	assert.Zero(t, h.after.suppressed)
}

func TestEngine_LoopRearmsCuesOfEarlyLaunch(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetRecording(true)
	e.SetLength(10000)
	e.SetLoop(true)
	e.AddRecorded(burstParams(), 600) // launch starts before 0

	e.Play()
	e.Update(0)
	e.Update(100)
	require.Len(t, h.audio.played, 1, "launch cue at 0")
	e.Update(700)
	require.Len(t, h.audio.played, 2, "explosion cue")

	e.Clock().Seek(9900)
	fr := e.Update(800)
	require.True(t, fr.Step.Wrapped)
	assert.Len(t, h.audio.played, 3, "launch cue again on the next pass")
	assert.Equal(t, 1, h.after.suppressed)

	e.Update(1500)
	assert.Len(t, h.audio.played, 4)
}

func TestEngine_Pointer(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetLayout(render.Rect{X: 0, Y: 0, W: 64, H: 10}, render.Rect{X: 0, Y: 11, W: 64, H: 1})

	assert.Equal(t, "POSITION: X: - Y: -", e.PositionReadout())
	e.PointerMove(47, 2)
	assert.Equal(t, "POSITION: X: 74 Y: 75", e.PositionReadout())

	e.PointerDown(10, 5)
	assert.True(t, e.Dragging())
	e.PointerMove(47, 2)
	e.PointerUp(47, 2)
	assert.False(t, e.Dragging())
	assert.Equal(t, 1, e.FreeRunCount())

	e.PointerDown(10, 5)
	e.PointerUp(10, 40)
	assert.Equal(t, 1, e.FreeRunCount(), "release off the sky cancels")

	e.PointerDown(32, 11)
	assert.False(t, e.Dragging(), "timeline ignored in free-run")

	e.SetRecording(true)
	e.SetLength(10000)
	e.AddRecorded(burstParams(), 5000)
	e.PointerDown(32, 11)
	assert.Equal(t, timeline.Scrubbing, e.Clock().Transport())
	st := e.Update(16).Step
	assert.True(t, st.Snapped)
	assert.Equal(t, 5000.0, st.Position)

	e.PointerMove(63, 11)
	assert.Equal(t, 10000.0, e.Update(32).Step.Position)
	e.PointerUp(63, 11)
	assert.Equal(t, timeline.Stopped, e.Clock().Transport())
}

func TestEngine_ShareQueryDebounced(t *testing.T) {
	h := newHarness(t)
	e := h.engine
	e.SetRecording(true)
	e.Update(0)

	e.AddRecorded(burstParams(), 1000)
	e.SetLoop(true)
	e.Update(50)
	assert.Empty(t, h.shares)

	e.Update(120)
	require.Len(t, h.shares, 1)
	assert.True(t, strings.Contains(h.shares[0], "r=1"))

	e.Update(400)
	assert.Len(t, h.shares, 1)

	s, present, err := codec.ParseURL(h.shares[0])
	require.NoError(t, err)
	require.True(t, present)
	assert.Len(t, s.Entries, 1)
	assert.True(t, s.Loop)
	assert.Equal(t, int64(1), h.reg.Counters.Get(status.URLWrites).Load())
}

func TestEngine_LoadShow(t *testing.T) {
	src := newHarness(t).engine
	src.SetRecording(true)
	src.SetLength(20000)
	src.SetNightSky(true)
	src.AddRecorded(burstParams(), 4000)
	p := burstParams()
	p.Shape = trajectory.Flower
	p.Position = projection.Normalized{X: 20, Y: 80}
	src.AddRecorded(p, 12000)
	query := src.ShareQuery()

	h := newHarness(t)
	require.NoError(t, h.engine.LoadQuery(query))
	assert.True(t, h.engine.Clock().Recording())
	assert.True(t, h.engine.NightSky())
	assert.Equal(t, 20000.0, h.engine.Clock().Length())
	require.Len(t, h.engine.Outline(), 2)
	assert.Equal(t, query, h.engine.ShareQuery())

	h.engine.Update(0)
	h.engine.Update(1000)
	assert.Empty(t, h.shares, "loading does not rewrite the url")
}

func TestEngine_LoadQueryPartial(t *testing.T) {
	h := newHarness(t)
	good := codec.EncodeEntry(codec.Entry{Params: burstParams(), ExplosionTime: 5000}, 10000)
	bad := "x" + good[1:]

	err := h.engine.LoadQuery("f=" + good + bad + "&l=10")
	assert.ErrorIs(t, err, codec.ErrInvalidToken)
	assert.Len(t, h.engine.Outline(), 1)

	require.NoError(t, h.engine.LoadQuery("l=20"))
	assert.Len(t, h.engine.Outline(), 1, "absent f leaves the show alone")

	require.NoError(t, h.engine.LoadQuery("f=&l=20"))
	assert.Empty(t, h.engine.Outline())
	assert.Equal(t, 20000.0, h.engine.Clock().Length())
}

func TestEngine_Template(t *testing.T) {
	e := newHarness(t).engine
	tpl := e.Template()
	assert.True(t, tpl.RandomShape && tpl.RandomColors && tpl.RandomScale)

	e.SetRandomize(false)
	e.SetShape(trajectory.Burst)
	e.StepScale(20)
	assert.Equal(t, firework.MaxScale, e.Template().Params.Scale)
	e.StepScale(-40)
	assert.Equal(t, firework.MinScale, e.Template().Params.Scale)
	e.SetScale(1.1)
	e.StepScale(1)
	assert.InDelta(t, 1.35, e.Template().Params.Scale, 1e-9)

	e.CycleShape(-1)
	assert.Equal(t, trajectory.Flower2, e.Template().Params.Shape)
	e.CycleShape(1)
	assert.Equal(t, trajectory.Burst, e.Template().Params.Shape)

	e.SetLaunchColor(vmath.Color{R: 2, G: -1, B: 0.5})
	assert.Equal(t, vmath.Color{R: 1, G: 0, B: 0.5}, e.Template().Params.LaunchColor)

	e.SetRandomShape(true)
	e.CreateFirework(projection.Normalized{X: 50, Y: 50})
	assert.InDelta(t, 1.35, e.Template().Params.Scale, 1e-9, "scale untouched when not randomized")
	assert.Equal(t, vmath.Color{R: 1, G: 0, B: 0.5}, e.Template().Params.LaunchColor)
}

func TestURLSync(t *testing.T) {
	u := NewURLSync(0)
	calls := 0
	build := func() string { calls++; return "f=a" }

	_, ok := u.Poll(1000, build)
	assert.False(t, ok)

	u.Mark(0)
	u.Mark(400)
	_, ok = u.Poll(800, build)
	assert.False(t, ok, "second edit restarts the interval")
	assert.Zero(t, calls)

	q, ok := u.Poll(900, build)
	assert.True(t, ok)
	assert.Equal(t, "f=a", q)
	assert.False(t, u.Pending())

	u.Mark(1000)
	_, ok = u.Poll(2000, build)
	assert.False(t, ok, "unchanged query is not rewritten")
	assert.Equal(t, 2, calls)

	u.Reset("f=b")
	assert.Equal(t, "f=b", u.Last())
	assert.False(t, u.Pending())
}

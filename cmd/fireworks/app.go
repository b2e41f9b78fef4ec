package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/fireworks/audio"
	"github.com/lixenwraith/fireworks/engine"
	"github.com/lixenwraith/fireworks/preview"
	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/render"
	"github.com/lixenwraith/fireworks/status"
	"github.com/lixenwraith/fireworks/timeline"
	"github.com/lixenwraith/fireworks/vmath"
)

// cellAspect is the height of a terminal cell over its width
const cellAspect = 2.0

// chromeRows are the rows under the sky: timeline, transport line, readout line
const chromeRows = 3

// app binds the engine to a tcell screen
type app struct {
	screen tcell.Screen
	scene  *render.Scene
	term   *render.Terminal
	engine *engine.Engine
	player *audio.Player // nil when audio is disabled
	hub    *preview.Hub  // nil when the preview feed is off
	reg    *status.Registry
	log    zerolog.Logger

	base     string
	share    string
	selected int // Index into the outline
	notice   string

	width, height int
	lastDraw      time.Time
}

type appOptions struct {
	Screen   tcell.Screen
	Player   *audio.Player
	Hub      *preview.Hub
	Registry *status.Registry
	Logger   zerolog.Logger
	Time     timeline.TimeProvider
	Seed     int64
	Debounce time.Duration
	BaseURL  string
}

func newApp(opts appOptions) *app {
	a := &app{
		screen: opts.Screen,
		scene:  render.NewScene(),
		player: opts.Player,
		hub:    opts.Hub,
		reg:    opts.Registry,
		log:    opts.Logger,
		base:   opts.BaseURL,
	}
	if a.reg == nil {
		a.reg = status.NewRegistry()
	}

	mapper := projection.New(projection.DefaultAspect)
	a.term = render.NewTerminal(a.screen, mapper, render.Rect{})

	eo := engine.Options{
		Mapper:     mapper,
		Renderer:   a.scene,
		Afterimage: a.term,
		Time:       opts.Time,
		Status:     a.reg,
		Logger:     opts.Logger,
		Seed:       opts.Seed,
		Debounce:   opts.Debounce,
		OnShare:    a.onShare,
	}
	if a.player != nil {
		eo.Audio = a.player
	}
	a.engine = engine.New(eo)
	a.resize()
	return a
}

func (a *app) onShare(q string) {
	a.share = q
	if a.hub != nil {
		a.hub.SetShare(q)
	}
}

// resize recomputes the layout from the screen size
func (a *app) resize() {
	a.width, a.height = a.screen.Size()
	skyH := max(a.height-chromeRows, 1)
	field := render.Rect{X: 0, Y: 0, W: a.width, H: skyH}
	bar := render.Rect{X: 1, Y: skyH, W: max(a.width-2, 1), H: 1}

	a.term.SetField(field)
	a.engine.SetLayout(field, bar)
	a.engine.SetAspect(float64(a.width) / float64(skyH) / cellAspect)
}

// handleEvent applies one input event; false means quit
func (a *app) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.resize()
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventKey:
		return a.handleKey(ev)
	}
	return true
}

func (a *app) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pressed := ev.Buttons()&tcell.Button1 != 0
	switch {
	case pressed && !a.engine.Dragging():
		a.engine.PointerDown(x, y)
	case pressed:
		a.engine.PointerMove(x, y)
	case a.engine.Dragging():
		a.engine.PointerUp(x, y)
	default:
		a.engine.PointerMove(x, y)
	}
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	e := a.engine
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		e.SkipBack()
	case tcell.KeyRight:
		e.SkipForward()
	case tcell.KeyHome:
		e.SkipToStart()
	case tcell.KeyEnd:
		e.SkipToEnd()
	case tcell.KeyTab:
		e.CycleShape(1)
	case tcell.KeyBacktab:
		e.CycleShape(-1)
	case tcell.KeyUp:
		a.selected--
	case tcell.KeyDown:
		a.selected++
	case tcell.KeyDelete:
		a.removeSelected()
	case tcell.KeyRune:
		return a.handleRune(ev.Rune())
	}
	return true
}

func (a *app) handleRune(r rune) bool {
	e := a.engine
	t := e.Template()
	switch r {
	case 'q':
		return false
	case ' ':
		e.TogglePlay()
	case 'b':
		e.Reverse()
	case 'R':
		e.SetRecording(!e.Clock().Recording())
	case 'l':
		e.SetLoop(!e.Clock().Loop())
	case 'n':
		e.SetNightSky(!e.NightSky())
	case '+', '=':
		e.StepLength(1)
	case '-':
		e.StepLength(-1)
	case ']':
		e.StepScale(1)
	case '[':
		e.StepScale(-1)
	case 'a':
		e.SetLaunchAudio(!t.Params.LaunchAudio)
	case 's':
		e.SetExplosionAudio(!t.Params.ExplosionAudio)
	case 'x':
		e.SetRandomize(!(t.RandomShape || t.RandomColors || t.RandomScale))
	case '1':
		e.SetRandomShape(!t.RandomShape)
	case '2':
		e.SetRandomColors(!t.RandomColors)
	case '3':
		e.SetRandomScale(!t.RandomScale)
	case 'c':
		e.SetLaunchColor(cycleColor(t.Params.LaunchColor))
	case 'v':
		e.SetNearColor(cycleColor(t.Params.NearColor))
	case 'f':
		e.SetFarColor(cycleColor(t.Params.FarColor))
	case 'm':
		if a.player != nil {
			a.player.SetEnabled(!a.player.Enabled())
		}
	case 'e':
		a.editSelected()
	case 'd':
		a.removeSelected()
	case 'y':
		a.notice = a.shareLink()
	}
	return true
}

// palette steps for the color keys
var palette = []vmath.Color{
	vmath.ColorWhite,
	vmath.ColorRed,
	{R: 1, G: 0.5, B: 0},
	{R: 1, G: 0.85, B: 0.1},
	vmath.ColorGreen,
	{R: 0.1, G: 0.9, B: 0.9},
	vmath.ColorBlue,
	{R: 0.7, G: 0.2, B: 1},
}

func cycleColor(c vmath.Color) vmath.Color {
	for i, p := range palette {
		if math.Abs(p.R-c.R)+math.Abs(p.G-c.G)+math.Abs(p.B-c.B) < 1e-3 {
			return palette[(i+1)%len(palette)]
		}
	}
	return palette[0]
}

func (a *app) selectedEntry() (engine.OutlineEntry, bool) {
	out := a.engine.Outline()
	if len(out) == 0 {
		a.selected = 0
		return engine.OutlineEntry{}, false
	}
	a.selected = min(max(a.selected, 0), len(out)-1)
	return out[a.selected], true
}

// editSelected applies the template look to the selected firework, keeping where it bursts
func (a *app) editSelected() {
	entry, ok := a.selectedEntry()
	if !ok {
		return
	}
	f, err := a.engine.Firework(entry.ID)
	if err != nil {
		a.notice = err.Error()
		return
	}
	p := a.engine.Template().Params
	p.Position = f.Params.Position
	p.Aspect = f.Params.Aspect
	if err := a.engine.EditFirework(entry.ID, p); err != nil {
		a.notice = err.Error()
	}
}

func (a *app) removeSelected() {
	if entry, ok := a.selectedEntry(); ok {
		a.engine.RemoveFirework(entry.ID)
	}
}

func (a *app) shareLink() string {
	q := a.engine.ShareQuery()
	if a.base == "" {
		return "?" + q
	}
	return a.base + "?" + q
}

// frame advances the engine to now and redraws
func (a *app) frame(now time.Time) {
	dt := time.Duration(0)
	if !a.lastDraw.IsZero() {
		dt = now.Sub(a.lastDraw)
	}
	a.lastDraw = now

	a.engine.Update(a.engine.WallTime())
	a.term.SetNightSky(a.engine.NightSky())
	a.term.Draw(a.scene, dt)
	a.drawChrome()

	st := a.scene.Stats()
	a.reg.Counters.Get(status.VisualsCreated).Store(int64(st.Created))
	a.reg.Counters.Get(status.VisualsDisposed).Store(int64(st.Disposed))

	if a.hub != nil {
		c := a.engine.Clock()
		a.hub.Publish(preview.Frame{
			Clock:     c.Position(),
			Length:    c.Length(),
			Recording: c.Recording(),
			NightSky:  a.engine.NightSky(),
			Aspect:    a.engine.Mapper().Aspect(),
			Visuals:   a.scene.Frame(),
		})
	}
	a.screen.Show()
}

func (a *app) drawChrome() {
	if a.height <= chromeRows {
		return
	}
	c := a.engine.Clock()
	skyH := a.height - chromeRows
	base := tcell.StyleDefault.Background(render.RGBBlack.Tcell())
	text := base.Foreground(render.RGBWidget.Tcell())

	for row := skyH; row < a.height; row++ {
		render.FillRow(a.screen, 0, row, a.width, base)
	}
	render.DrawTimeline(a.screen, render.Rect{X: 1, Y: skyH, W: max(a.width-2, 1), H: 1}, render.TimelineView{
		Position: c.Position(),
		Length:   c.Length(),
		Markers:  a.engine.Markers(),
		Active:   c.Recording(),
	})

	t := a.engine.Template()
	mode := "LIVE"
	if c.Recording() {
		mode = "REC " + c.Transport().String()
	}
	line := fmt.Sprintf(" %s %.1f/%ds %d fw | loop:%s sky:%s | %s x%.2f audio:%s%s rand:%s",
		mode, c.Position()/1000, int(c.Length()/1000), len(a.engine.Outline()),
		onOff(c.Loop()), onOff(a.engine.NightSky()),
		t.Params.Shape, t.Params.Scale, flag(t.Params.LaunchAudio, "L"), flag(t.Params.ExplosionAudio, "E"),
		randomFlags(t))
	render.DrawText(a.screen, 0, skyH+1, a.width, line, text)

	readout := " " + a.engine.PositionReadout()
	if entry, ok := a.selectedEntry(); ok {
		readout += fmt.Sprintf(" | #%d %s @%.1fs", entry.ID, entry.Shape, entry.ExplosionTime/1000)
	}
	switch {
	case a.notice != "":
		readout += " | " + a.notice
	case a.share != "":
		readout += " | ?" + a.share
	}
	render.DrawText(a.screen, 0, skyH+2, a.width, readout, text)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func flag(b bool, s string) string {
	if b {
		return s
	}
	return "-"
}

func randomFlags(t engine.Template) string {
	var b strings.Builder
	b.WriteString(flag(t.RandomShape, "S"))
	b.WriteString(flag(t.RandomColors, "C"))
	b.WriteString(flag(t.RandomScale, "X"))
	return b.String()
}

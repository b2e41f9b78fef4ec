package render

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fireworks/projection"
	"github.com/lixenwraith/fireworks/vmath"
)

// MockScreen records SetContent calls on top of a nil tcell.Screen
type MockScreen struct {
	tcell.Screen
	width, height int
	cells         map[[2]int]rune
}

func newMockScreen(w, h int) *MockScreen {
	return &MockScreen{width: w, height: h, cells: make(map[[2]int]rune)}
}

func (m *MockScreen) Size() (int, int) { return m.width, m.height }
func (m *MockScreen) Show()            {}
func (m *MockScreen) Clear()           { clear(m.cells) }
func (m *MockScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.cells[[2]int{x, y}] = mainc
}

func (m *MockScreen) count(r rune) int {
	n := 0
	for _, c := range m.cells {
		if c == r {
			n++
		}
	}
	return n
}

func TestScene_Lifecycle(t *testing.T) {
	s := NewScene()
	h := s.CreateVisual(KindShrapnel, VisualParams{Owner: 2, Color: vmath.ColorRed, Scale: 1})
	require.NotZero(t, h)

	s.SetPosition(h, vmath.V3(1, 2, -10))
	s.Show(h)
	v, ok := s.Lookup(h)
	require.True(t, ok)
	assert.Equal(t, 2, v.Owner)
	assert.True(t, v.Visible)
	assert.Equal(t, vmath.V3(1, 2, -10), v.Position)

	s.DisposeVisual(h)
	s.DisposeVisual(h)
	st := s.Stats()
	assert.Equal(t, 1, st.Created)
	assert.Equal(t, 1, st.Disposed)
	assert.Equal(t, 0, st.Live)

	s.SetPosition(h, vmath.Vec3{})
	assert.Equal(t, 1, s.Stats().Stale)
}

func TestScene_FrameCopiesVisibleOnly(t *testing.T) {
	s := NewScene()
	a := s.CreateVisual(KindBurstPath, VisualParams{})
	b := s.CreateVisual(KindShrapnel, VisualParams{})
	s.Show(a)
	pts := []vmath.Vec3{{X: 0}, {X: 1}}
	s.SetPath(a, pts, 0.03)
	_ = b

	frame := s.Frame()
	require.Len(t, frame, 1)
	assert.Equal(t, a, frame[0].Handle)

	frame[0].Path[0].X = 99
	v, _ := s.Lookup(a)
	assert.Equal(t, 0.0, v.Path[0].X)
}

func TestAfterimage_DecayClears(t *testing.T) {
	a := NewAfterimage(4, 2)
	a.Stamp(1, 1, '*', RGB{200, 200, 200})
	assert.Equal(t, 1, a.Lit())

	a.Decay(AfterimageHalfLife)
	r, c := a.At(1, 1)
	assert.Equal(t, '*', r)
	assert.InDelta(t, 100, int(c.R), 1)

	a.Decay(20 * AfterimageHalfLife)
	assert.Equal(t, 0, a.Lit())
}

func TestAfterimage_StampKeepsBrightest(t *testing.T) {
	a := NewAfterimage(2, 2)
	a.Stamp(0, 0, '*', RGB{250, 0, 0})
	a.Stamp(0, 0, '·', RGB{10, 10, 10})

	r, c := a.At(0, 0)
	assert.Equal(t, '*', r)
	assert.Equal(t, RGB{250, 10, 10}, c)

	a.Stamp(-1, 5, '*', RGB{255, 255, 255})
	assert.Equal(t, 1, a.Lit())
}

func TestTerminal_DrawAndSuppress(t *testing.T) {
	screen := newMockScreen(40, 20)
	mapper := projection.New(1)
	term := NewTerminal(screen, mapper, Rect{X: 0, Y: 0, W: 40, H: 20})

	scene := NewScene()
	h := scene.CreateVisual(KindProjectile, VisualParams{Color: vmath.ColorWhite, Scale: 0.05})
	scene.SetPosition(h, mapper.MustPointToWorld(0, 0))
	scene.Show(h)

	term.Draw(scene, 16*time.Millisecond)
	assert.Equal(t, 1, screen.count('●'))
	assert.Equal(t, 40*20, len(screen.cells))

	scene.SetPosition(h, mapper.MustPointToWorld(0.5, 0.5))
	term.Draw(scene, 16*time.Millisecond)
	assert.Equal(t, 2, term.glow.Lit(), "previous position stays lit")

	term.Suppress()
	scene.SetPosition(h, mapper.MustPointToWorld(-0.5, -0.5))
	term.Draw(scene, 16*time.Millisecond)
	assert.Equal(t, 1, term.glow.Lit())
}

func TestTerminal_PathDrawsLine(t *testing.T) {
	screen := newMockScreen(40, 20)
	mapper := projection.New(1)
	term := NewTerminal(screen, mapper, Rect{W: 40, H: 20})

	scene := NewScene()
	h := scene.CreateVisual(KindLaunchPath, VisualParams{Color: vmath.ColorWhite})
	scene.SetPath(h, []vmath.Vec3{
		mapper.MustPointToWorld(-0.9, 0),
		mapper.MustPointToWorld(0.9, 0),
	}, 0.01)
	scene.Show(h)

	term.Draw(scene, 0)
	assert.GreaterOrEqual(t, screen.count('·'), 30)
}

func TestDrawTimeline(t *testing.T) {
	screen := newMockScreen(20, 1)
	DrawTimeline(screen, Rect{W: 20, H: 1}, TimelineView{
		Position: 0,
		Length:   10000,
		Markers:  []float64{5000, 10000},
		Active:   true,
	})
	assert.Equal(t, '█', screen.cells[[2]int{0, 0}])
	assert.Equal(t, '◆', screen.cells[[2]int{19, 0}])
	assert.Equal(t, 2, screen.count('◆'))
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 2, Y: 1, W: 3, H: 2}
	assert.True(t, r.Contains(2, 1))
	assert.True(t, r.Contains(4, 2))
	assert.False(t, r.Contains(5, 2))
	assert.False(t, Rect{}.Contains(0, 0))
}

package timeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingClock(length float64) *Clock {
	c := NewClock()
	c.SetMode(ModeRecording)
	c.SetLength(length)
	c.Advance(0, nil)
	return c
}

func TestClock_ScrubSnap(t *testing.T) {
	markers := []float64{1000, 5000, 9000}
	c := recordingClock(10000)

	c.BeginScrub(0.098)
	st := c.Advance(16, markers)
	assert.True(t, st.Snapped)
	assert.Equal(t, 1000.0, st.Position)
	assert.True(t, st.Jumped)

	c.ScrubTo(0.4)
	st = c.Advance(32, markers)
	assert.False(t, st.Snapped)
	assert.InDelta(t, 4000, st.Position, 1e-9)

	c.EndScrub()
	assert.Equal(t, Stopped, c.Transport())
	st = c.Advance(48, markers)
	assert.InDelta(t, 4000, st.Position, 1e-9)
	assert.False(t, st.Jumped)
}

func TestClock_ReverseClamp(t *testing.T) {
	c := recordingClock(10000)
	c.Seek(300)
	c.Reverse()

	st := c.Advance(5000, nil)
	assert.Equal(t, 0.0, st.Position)
	assert.Equal(t, Stopped, c.Transport())

	st = c.Advance(6000, nil)
	assert.Equal(t, 0.0, st.Position)
}

func TestClock_PlayWrapsWhenLooping(t *testing.T) {
	c := recordingClock(10000)
	c.SetLoop(true)
	c.Seek(9900)
	c.Play()

	st := c.Advance(200, nil)
	assert.Equal(t, 0.0, st.Position)
	assert.True(t, st.Jumped)
	assert.True(t, st.Wrapped)
	assert.Equal(t, Playing, c.Transport())

	st = c.Advance(300, nil)
	assert.Equal(t, 100.0, st.Position)
	assert.False(t, st.Wrapped)
}

func TestClock_PlayStopsAtEndWithoutLoop(t *testing.T) {
	c := recordingClock(10000)
	c.Seek(9950)
	c.Play()

	st := c.Advance(100, nil)
	assert.True(t, st.Ended)
	assert.False(t, st.Wrapped)
	assert.Equal(t, 0.0, st.Position)
	assert.Equal(t, Stopped, c.Transport())
}

func TestClock_Skips(t *testing.T) {
	markers := []float64{1000, 5000, 9000}
	c := recordingClock(10000)
	c.Seek(5000)

	c.RequestSkip(SkipForward)
	assert.Equal(t, 9000.0, c.Advance(10, markers).Position)
	assert.Equal(t, SkipNone, c.PendingSkip())

	c.RequestSkip(SkipForward)
	assert.Equal(t, 10000.0, c.Advance(20, markers).Position)

	c.RequestSkip(SkipBack)
	assert.Equal(t, 9000.0, c.Advance(30, markers).Position)

	c.RequestSkip(SkipStart)
	st := c.Advance(40, markers)
	assert.Equal(t, 0.0, st.Position)
	assert.True(t, st.Jumped)

	c.RequestSkip(SkipBack)
	assert.Equal(t, 0.0, c.Advance(50, markers).Position)

	c.RequestSkip(SkipEnd)
	assert.Equal(t, 10000.0, c.Advance(60, markers).Position)
}

func TestClock_SkipConsumedBeforePlayback(t *testing.T) {
	c := recordingClock(10000)
	c.Play()
	c.RequestSkip(SkipStart)
	c.Seek(4000)

	st := c.Advance(100, nil)
	assert.Equal(t, 0.0, st.Position, "skip wins over the playback step")
	assert.Equal(t, 100.0, c.Advance(200, nil).Position)
}

func TestClock_FreeRunDoesNotMove(t *testing.T) {
	c := NewClock()
	c.Play()
	c.Advance(0, nil)
	st := c.Advance(500, nil)
	assert.Equal(t, 0.0, st.Position)
	assert.Equal(t, 500.0, st.Delta)
}

func TestClock_Length(t *testing.T) {
	c := NewClock()
	assert.Equal(t, DefaultLength, c.Length())

	c.StepLength(1)
	assert.Equal(t, 35000.0, c.Length())
	c.StepLength(10)
	assert.Equal(t, MaxLength, c.Length())
	c.StepLength(-20)
	assert.Equal(t, MinLength, c.Length())

	c.Seek(9000)
	c.SetLength(12400)
	assert.Equal(t, 12000.0, c.Length())
	assert.Equal(t, 9000.0, c.Position())
	assert.Equal(t, 120.0, c.SnapThreshold())
}

func TestClock_PlayFromEndRestarts(t *testing.T) {
	c := recordingClock(10000)
	c.Seek(10000)
	c.Play()
	assert.Equal(t, 0.0, c.Position())
}

func TestMarkers(t *testing.T) {
	m := []float64{5000, 1000, 5000, 9000}
	assert.Equal(t, []float64{1000, 5000, 9000}, SortedMarkers(m))

	next, ok := NextMarker(5000, m)
	require.True(t, ok)
	assert.Equal(t, 9000.0, next)
	_, ok = NextMarker(9000, m)
	assert.False(t, ok)

	prev, ok := PrevMarker(5000, m)
	require.True(t, ok)
	assert.Equal(t, 1000.0, prev)

	pos, snapped := Snap(1060, m, 50)
	assert.False(t, snapped)
	assert.Equal(t, 1060.0, pos)
}

func TestWidget_Fraction(t *testing.T) {
	w := Widget{X: 10, Width: 21}
	assert.Equal(t, 0.0, w.Fraction(10))
	assert.Equal(t, 0.5, w.Fraction(20))
	assert.Equal(t, 1.0, w.Fraction(30))
	assert.Equal(t, 1.0, w.Fraction(99))
	assert.Equal(t, 0.0, w.Fraction(-3))
	assert.True(t, w.Contains(30))
	assert.False(t, w.Contains(31))
}

func TestMockTimeProvider(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := NewMockTimeProvider(start)
	assert.True(t, mock.Now().Equal(start))

	mock.Advance(1500 * time.Millisecond)
	assert.Equal(t, 1500.0, Millis(start, mock.Now()))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mock.Advance(time.Millisecond)
				_ = mock.Now()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 2500.0, Millis(start, mock.Now()))
}

func TestWallClock_Monotonic(t *testing.T) {
	w := NewWallClock()
	a := w.Now()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, Millis(a, w.Now()), 5.0)
}

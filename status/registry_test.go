package status

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_GetReturnsStablePointer(t *testing.T) {
	r := NewRegistry()

	a := r.Counters.Get(FramesRendered)
	b := r.Counters.Get(FramesRendered)
	require.Same(t, a, b)

	a.Add(3)
	assert.Equal(t, int64(3), b.Load())
}

func TestTable_LookupDoesNotAllocate(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Gauges.Lookup(ClockTime)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Gauges.Len())

	r.Gauges.Get(ClockTime).Set(1500)
	g, ok := r.Gauges.Lookup(ClockTime)
	require.True(t, ok)
	assert.Equal(t, 1500.0, g.Get())
}

func TestGauge_ConcurrentAdd(t *testing.T) {
	var g Gauge
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				g.Add(0.5)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 4000.0, g.Get())
}

func TestLabel_Truncates(t *testing.T) {
	var l Label
	assert.Equal(t, "", l.Get())

	l.Set(strings.Repeat("x", MaxLabelLen+10))
	assert.Len(t, l.Get(), MaxLabelLen)
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Counters.Get(FireworksTotal).Store(4)
	r.Gauges.Get(ClockLength).Set(30000)
	r.Flags.Get(EngineLooping).Store(true)
	r.Labels.Get(ClockMode).Set("play")

	s := r.Snapshot()
	assert.Equal(t, int64(4), s.Counters[FireworksTotal])
	assert.Equal(t, 30000.0, s.Gauges[ClockLength])
	assert.True(t, s.Flags[EngineLooping])
	assert.Equal(t, "play", s.Labels[ClockMode])
	assert.Equal(t, 4, r.Total())

	r.Counters.Get(FireworksTotal).Add(1)
	assert.Equal(t, int64(4), s.Counters[FireworksTotal])
}

func TestTable_RangeSorted(t *testing.T) {
	tbl := NewTable[Gauge]()
	tbl.Get("b")
	tbl.Get("c")
	tbl.Get("a")

	var names []string
	tbl.Range(func(n string, _ *Gauge) { names = append(names, n) })
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

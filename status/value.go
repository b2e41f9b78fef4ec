package status

import (
	"math"
	"sync/atomic"
)

// Gauge is a float64 that can be read and written from any goroutine
// Zero value reads as 0
type Gauge struct {
	bits atomic.Uint64
}

func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Add applies delta with a CAS loop and returns the new value
func (g *Gauge) Add(delta float64) float64 {
	for {
		old := g.bits.Load()
		next := math.Float64frombits(old) + delta
		if g.bits.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

// Label holds a short string, longer values are cut at MaxLabelLen
type Label struct {
	ptr atomic.Pointer[string]
}

// MaxLabelLen bounds label values shown in the status bar
const MaxLabelLen = 32

func (l *Label) Set(v string) {
	if len(v) > MaxLabelLen {
		v = v[:MaxLabelLen]
	}
	l.ptr.Store(&v)
}

func (l *Label) Get() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}

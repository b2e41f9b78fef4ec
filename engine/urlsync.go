package engine

import "time"

// DefaultDebounce is the quiet period before the share query is rewritten
const DefaultDebounce = 500 * time.Millisecond

// URLSync debounces share query writes on frame time
// Mark records an edit; Poll emits once no edit arrived for the debounce interval and the
// query differs from the last one written.
type URLSync struct {
	debounce float64 // ms
	pending  bool
	dirtyAt  float64
	last     string
}

// NewURLSync creates a debouncer, non-positive intervals use DefaultDebounce
func NewURLSync(debounce time.Duration) *URLSync {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &URLSync{debounce: float64(debounce) / float64(time.Millisecond)}
}

// Mark records an edit at frame time now; later edits restart the interval
func (u *URLSync) Mark(now float64) {
	u.pending = true
	u.dirtyAt = now
}

// Pending reports whether an edit is waiting to be written
func (u *URLSync) Pending() bool {
	return u.pending
}

// Poll returns the query to write when the interval has elapsed
// build is only called when a write is due
func (u *URLSync) Poll(now float64, build func() string) (string, bool) {
	if !u.pending || now-u.dirtyAt < u.debounce {
		return "", false
	}
	u.pending = false
	q := build()
	if q == u.last {
		return "", false
	}
	u.last = q
	return q, true
}

// Reset drops any pending edit and records q as already written
func (u *URLSync) Reset(q string) {
	u.pending = false
	u.last = q
}

// Last is the most recently written query
func (u *URLSync) Last() string {
	return u.last
}

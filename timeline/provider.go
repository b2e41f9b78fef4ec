package timeline

import (
	"sync"
	"time"
)

// TimeProvider supplies wall time to the free-run population and the frame loop
type TimeProvider interface {
	Now() time.Time
}

// WallClock provides the real system time with monotonic clock readings
type WallClock struct{}

func NewWallClock() *WallClock {
	return &WallClock{}
}

// Now returns the current time with monotonic clock reading
func (WallClock) Now() time.Time {
	return time.Now()
}

// Millis converts the monotonic distance from epoch to float ms
func Millis(epoch, t time.Time) float64 {
	return float64(t.Sub(epoch)) / float64(time.Millisecond)
}

// MockTimeProvider provides a controllable time source for testing
type MockTimeProvider struct {
	mu          sync.RWMutex
	currentTime time.Time
}

func NewMockTimeProvider(startTime time.Time) *MockTimeProvider {
	return &MockTimeProvider{currentTime: startTime}
}

func (m *MockTimeProvider) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentTime
}

func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance moves the mocked time forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

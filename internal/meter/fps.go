// Package meter measures the frame rate of the capture loop.
package meter

import (
	"sync"
	"time"
)

// FPS computes the instantaneous frame rate from the time between two ticks.
type FPS struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewFPS creates a meter that reads the wall clock.
func NewFPS() *FPS {
	return NewFPSWithClock(time.Now)
}

// NewFPSWithClock creates a meter that reads time from now.
func NewFPSWithClock(now func() time.Time) *FPS {
	return &FPS{now: now}
}

// Tick records the current time and returns the frames per second since the previous tick.
func (m *FPS) Tick() int {
	return m.TickAt(m.now())
}

// TickAt records t and returns 1/(t - previous) truncated to an integer.
// It returns 0 on the first tick and whenever no time has elapsed.
func (m *FPS) TickAt(t time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.last
	m.last = t

	if prev.IsZero() {
		return 0
	}

	elapsed := t.Sub(prev)
	if elapsed <= 0 {
		return 0
	}

	return int(1 / elapsed.Seconds())
}

// Reset forgets the previous tick.
func (m *FPS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = time.Time{}
}

package scheduler

import (
	"sync"
	"time"
)

// Manual is an engine.Scheduler driven by explicit Fire calls
type Manual struct {
	mu       sync.Mutex
	callback func()
	interval time.Duration
	running  bool
	starts   int
	stops    int
}

// NewManual creates a stopped manual scheduler
func NewManual() *Manual {
	return &Manual{}
}

// StartTicking records the schedule
func (m *Manual) StartTicking(callback func(), interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callback = callback
	m.interval = interval
	m.running = true
	m.starts++
}

// StopTicking cancels the schedule
func (m *Manual) StopTicking() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.stops++
}

// Fire runs the callback once if a schedule is active and reports whether it ran.
// The callback runs without the lock held, so it may stop or restart the schedule.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	cb := m.callback
	running := m.running
	m.mu.Unlock()

	if !running || cb == nil {
		return false
	}
	cb()
	return true
}

func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manual) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

func (m *Manual) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

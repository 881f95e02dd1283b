package scheduler

import (
	"sync"
	"time"
)

// PostFunc hands a function to the goroutine that owns the engine
type PostFunc func(fn func()) bool

// Ticker is a wall-clock engine.Scheduler
type Ticker struct {
	post PostFunc

	mu       sync.Mutex
	gen      uint64
	stop     chan struct{}
	interval time.Duration
}

// NewTicker creates a ticker that delivers callbacks through post, normally Loop.Post
func NewTicker(post PostFunc) *Ticker {
	return &Ticker{post: post}
}

// StartTicking replaces any active schedule with one firing callback every interval
func (t *Ticker) StartTicking(callback func(), interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.interval = interval

	go t.run(gen, stop, callback, interval)
}

// StopTicking cancels the schedule. Callbacks already queued are dropped when they run.
func (t *Ticker) StopTicking() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.gen++
}

func (t *Ticker) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// Running reports whether a schedule is active
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// Interval returns the interval of the last schedule
func (t *Ticker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

func (t *Ticker) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil && t.gen == gen
}

func (t *Ticker) run(gen uint64, stop <-chan struct{}, callback func(), interval time.Duration) {
	tk := time.NewTicker(interval)
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			ok := t.post(func() {
				if t.current(gen) {
					callback()
				}
			})
			if !ok {
				return
			}
		}
	}
}

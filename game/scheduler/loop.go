package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrLoopClosed is returned when work is posted to a loop that has stopped
var ErrLoopClosed = errors.New("loop closed")

// DefaultQueueSize is the queue depth used when NewLoop is given a non-positive size
const DefaultQueueSize = 64

// Loop runs posted functions one at a time, in post order, on the goroutine that calls Run.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

// NewLoop creates a loop with the given queue depth
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run processes posted functions until ctx is cancelled or Close is called.
// The loop is closed when Run returns.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn and reports whether it was accepted.
// It blocks while the queue is full and must not be called from inside the loop.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case <-l.done:
		return false
	case l.queue <- fn:
		return true
	}
}

const (
	doQueued int32 = iota
	doStarted
	doCancelled
)

// Do posts fn and waits for it to finish.
// An error means fn never ran: once fn has started, Do waits for it regardless of ctx.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	var state atomic.Int32
	finished := make(chan struct{})
	if !l.Post(func() {
		if !state.CompareAndSwap(doQueued, doStarted) {
			return
		}
		defer close(finished)
		fn()
	}) {
		return ErrLoopClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		if state.CompareAndSwap(doQueued, doCancelled) {
			return ctx.Err()
		}
	case <-l.done:
		if state.CompareAndSwap(doQueued, doCancelled) {
			return ErrLoopClosed
		}
	}
	<-finished
	return nil
}

// Close stops the loop. Queued functions that have not started are discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

// Done is closed once the loop has stopped
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Package loop provides the single-goroutine event loop every screen runs on.
// All state mutations, delayed continuations and speech callbacks of a screen
// are executed by its loop, one at a time.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vytor/sayilar/internal/logger"
)

// ErrStopped is returned when work is posted to a loop that is no longer running.
var ErrStopped = errors.New("loop stopped")

// Timer is a pending delayed callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped a callback that had not run yet.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop serializes work onto one goroutine.
type Loop struct {
	work     chan func()
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	log      *logger.Logger
}

// New creates a loop with the given work queue size.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Loop{
		work: make(chan func(), queueSize),
		quit: make(chan struct{}),
		done: make(chan struct{}),
		log:  logger.Default().WithPrefix("loop"),
	}
}

// Start runs the loop in its own goroutine until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	go l.run(ctx)
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("loop exiting (context cancelled)")
			return
		case <-l.quit:
			l.log.Debug("loop exiting (stopped)")
			return
		case fn := <-l.work:
			l.exec(fn)
		}
	}
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			l.log.Error("panic recovered in loop callback: %v", rec)
		}
	}()
	fn()
}

// Stop terminates the loop. Pending work is dropped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.quit) })
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues fn for execution. It reports false if the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	case <-l.quit:
		return false
	default:
	}
	select {
	case l.work <- fn:
		return true
	case <-l.quit:
		return false
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// AfterFunc schedules fn to run on the loop after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			t.ran.Store(true)
			fn()
		})
	})
	return t
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	ran     atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	if t.ran.Load() {
		return false
	}
	return !t.stopped.Swap(true)
}

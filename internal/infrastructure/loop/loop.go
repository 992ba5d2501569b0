package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned by Do when the loop has shut down
var ErrStopped = errors.New("event loop stopped")

// Timer is a scheduled callback that can be cancelled
type Timer interface {
	// Stop cancels the timer. A stopped timer never runs its callback,
	// even if it already expired and the callback is queued.
	Stop() bool
}

// Scheduler serializes callbacks onto a single logical thread
type Scheduler interface {
	// Post queues fn to run on the loop
	Post(fn func())
	// AfterFunc runs fn on the loop once d has elapsed
	AfterFunc(d time.Duration, fn func()) Timer
	// Go runs blocking work off the loop; results must be posted back
	Go(fn func())
}

// Loop is the production Scheduler: one goroutine drains a task queue
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// New creates a loop with the given queue capacity
func New(capacity int) *Loop {
	if capacity <= 0 {
		capacity = 256
	}
	return &Loop{
		tasks: make(chan func(), capacity),
		done:  make(chan struct{}),
	}
}

// Run drains tasks until ctx is cancelled or Stop is called
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.done:
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Stop shuts the loop down and waits for goroutines started with Go
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}

// Post queues fn; tasks posted after Stop are dropped
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
	case l.tasks <- fn:
	}
}

// AfterFunc schedules fn on the loop after d
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.Load() {
				return
			}
			fn()
		})
	})
	return t
}

// Go runs fn on its own goroutine, tracked for Stop
func (l *Loop) Go(fn func()) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		fn()
	}()
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.stopped.Store(true)
	return t.timer.Stop()
}

// Do runs fn on the scheduler and waits for it to finish.
// It must not be called from a loop callback.
func Do(ctx context.Context, s Scheduler, fn func()) error {
	finished := make(chan struct{})
	s.Post(func() {
		defer close(finished)
		fn()
	})

	var stopped <-chan struct{}
	if l, ok := s.(*Loop); ok {
		stopped = l.done
	}

	select {
	case <-finished:
		return nil
	case <-stopped:
		// the task may still have run before shutdown
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

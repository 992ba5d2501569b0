// Package looptest provides a deterministic, virtual-time loop.Scheduler
// for tests.
package looptest

import (
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/infrastructure/loop"
)

// Scheduler runs posted tasks inline and fires timers only when the test
// advances the virtual clock. Work passed to Go runs synchronously unless
// DeferGo was called.
type Scheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	timers  []*Timer
	queue   []func()
	running bool

	deferGo bool
	goQueue []func()
}

// Timer is a pending virtual timer
type Timer struct {
	sched   *Scheduler
	Delay   time.Duration
	Due     time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

var _ loop.Scheduler = (*Scheduler)(nil)

// New creates a scheduler at virtual time zero
func New() *Scheduler {
	return &Scheduler{}
}

// Post queues fn and drains the queue unless a task is already running
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.drain()
}

func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.mu.Unlock()
			return
		}
		fn := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		fn()
	}
}

// AfterFunc registers a virtual timer
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) loop.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &Timer{sched: s, Delay: d, Due: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Go runs fn synchronously, or queues it after DeferGo
func (s *Scheduler) Go(fn func()) {
	s.mu.Lock()
	if s.deferGo {
		s.goQueue = append(s.goQueue, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// DeferGo holds work passed to Go until RunGo, so tests can control the
// order in which background results arrive
func (s *Scheduler) DeferGo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deferGo = true
}

// Deferred returns the number of queued Go calls
func (s *Scheduler) Deferred() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.goQueue)
}

// RunGo runs the queued Go call at index i
func (s *Scheduler) RunGo(i int) {
	s.mu.Lock()
	fn := s.goQueue[i]
	s.goQueue = append(s.goQueue[:i], s.goQueue[i+1:]...)
	s.mu.Unlock()
	fn()
}

// Stop cancels the timer
func (t *Timer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Now returns the virtual clock
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the clock forward by d, firing due timers in order
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.Due
		next.fired = true
		fn := next.fn
		s.mu.Unlock()

		s.Post(fn)
	}
}

// Pending returns the active timers ordered by due time
func (s *Scheduler) Pending() []*Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Timer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Due == out[j].Due {
			return out[i].seq < out[j].seq
		}
		return out[i].Due < out[j].Due
	})
	return out
}

func (s *Scheduler) nextDue(target time.Duration) *Timer {
	var next *Timer
	for _, t := range s.timers {
		if t.stopped || t.fired || t.Due > target {
			continue
		}
		if next == nil || t.Due < next.Due || (t.Due == next.Due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

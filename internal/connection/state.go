package connection

import "sync/atomic"

// State is the lifecycle of one physical socket
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Suspender reports whether the host is suspended (hidden, backgrounded).
// While suspended an idle timeout does not close the connection.
type Suspender interface {
	Suspended() bool
}

// Signal is a Suspender flipped by the host
type Signal struct {
	suspended atomic.Bool
}

// Set records the suspended flag
func (s *Signal) Set(suspended bool) {
	s.suspended.Store(suspended)
}

// Suspended implements Suspender
func (s *Signal) Suspended() bool {
	return s.suspended.Load()
}

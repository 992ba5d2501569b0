package resilience

import "time"

// Backoff produces exponentially growing delays with a ceiling.
// Not safe for concurrent use; the connection owns one on its loop.
type Backoff struct {
	base    time.Duration
	max     time.Duration
	current time.Duration
}

// NewBackoff creates a backoff starting at base and capped at max
func NewBackoff(base, max time.Duration) *Backoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	return &Backoff{base: base, max: max, current: base}
}

// Next returns the delay to wait now and doubles the following one
func (b *Backoff) Next() time.Duration {
	d := b.current
	b.current = min(b.current*2, b.max)
	return d
}

// Peek returns the delay Next would return without advancing
func (b *Backoff) Peek() time.Duration {
	return b.current
}

// Reset returns to the base delay after a successful attempt
func (b *Backoff) Reset() {
	b.current = b.base
}

// Base returns the initial delay
func (b *Backoff) Base() time.Duration {
	return b.base
}

// Max returns the delay ceiling
func (b *Backoff) Max() time.Duration {
	return b.max
}

package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDoublesUpToCeiling(t *testing.T) {
	b := NewBackoff(time.Second, 10*time.Second)

	var got []time.Duration
	for i := 0; i < 7; i++ {
		got = append(got, b.Next())
	}

	assert.Equal(t, []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}, got)
}

func TestBackoffMonotonic(t *testing.T) {
	tests := []struct {
		name string
		base time.Duration
		max  time.Duration
	}{
		{"defaults", time.Second, 10 * time.Second},
		{"tight ceiling", 300 * time.Millisecond, time.Second},
		{"ceiling equals base", time.Second, time.Second},
		{"ceiling below base", 5 * time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackoff(tt.base, tt.max)
			prev := time.Duration(0)
			for i := 0; i < 20; i++ {
				d := b.Next()
				assert.GreaterOrEqual(t, d, prev)
				assert.LessOrEqual(t, d, b.Max())
				prev = d
			}
		})
	}
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoff(time.Second, 10*time.Second)
	b.Next()
	b.Next()
	assert.Equal(t, 4*time.Second, b.Peek())

	b.Reset()
	assert.Equal(t, time.Second, b.Peek())
	assert.Equal(t, time.Second, b.Next())
}

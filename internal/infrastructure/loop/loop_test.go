package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(16)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		l.Stop()
	})
	return l
}

func TestPostRunsInOrder(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}

	require.NoError(t, Do(context.Background(), l, func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestAfterFuncRunsOnLoop(t *testing.T) {
	l := startLoop(t)

	fired := make(chan struct{})
	l.AfterFunc(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestStoppedTimerNeverRuns(t *testing.T) {
	l := startLoop(t)

	var calls atomic.Int32
	timer := l.AfterFunc(20*time.Millisecond, func() { calls.Add(1) })
	assert.True(t, timer.Stop())

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, Do(context.Background(), l, func() {}))
	assert.Equal(t, int32(0), calls.Load())
}

func TestDoHonorsContext(t *testing.T) {
	l := New(1)
	// loop never runs, so the task is never drained
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Do(ctx, l, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	l.Stop()
}

func TestDoAfterStop(t *testing.T) {
	l := New(1)
	l.Stop()

	err := Do(context.Background(), l, func() {})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestGoIsAwaitedByStop(t *testing.T) {
	l := New(1)
	var done atomic.Bool
	l.Go(func() {
		time.Sleep(10 * time.Millisecond)
		done.Store(true)
	})
	l.Stop()
	assert.True(t, done.Load())
}

package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestScheduler() *Scheduler {
	return New(Options{
		TickPeriod: 5 * time.Millisecond,
		FactPeriod: 5 * time.Millisecond,
		Clock:      &steppingClock{now: time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)},
	})
}

func TestNewDefaults(t *testing.T) {
	s := New(Options{})
	assert.Equal(t, DefaultTickPeriod, s.tick.period)
	assert.Equal(t, DefaultFactPeriod, s.facts.period)
	assert.NotNil(t, s.tick.clock)
	assert.False(t, s.Running())
}

func TestStartDeliversClockInstant(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	got := make(chan time.Time, 16)
	s.Start(func(now time.Time) {
		select {
		case got <- now:
		default:
		}
	})
	require.True(t, s.Running())

	first := <-got
	second := <-got
	assert.True(t, second.After(first))
	assert.Equal(t, 2026, first.Year())
}

func TestStopPreventsFurtherTicks(t *testing.T) {
	s := newTestScheduler()

	var calls atomic.Int64
	s.Start(func(time.Time) { calls.Add(1) })
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())
	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())

	// second stop is a no-op
	s.Stop()
	assert.Equal(t, stopped, calls.Load())
}

func TestStopBeforeStart(t *testing.T) {
	s := newTestScheduler()
	s.Stop()
	s.StopFacts()
	s.Close()
	assert.False(t, s.Running())
}

func TestStartReplacesRunningLoop(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	var first, second atomic.Int64
	s.Start(func(time.Time) { first.Add(1) })
	require.Eventually(t, func() bool { return first.Load() >= 2 }, time.Second, time.Millisecond)

	s.Start(func(time.Time) { second.Add(1) })
	replaced := first.Load()
	require.Eventually(t, func() bool { return second.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, replaced, first.Load())
}

func TestFactsAreIndependent(t *testing.T) {
	s := newTestScheduler()
	defer s.Close()

	var ticks, rotations atomic.Int64
	s.Start(func(time.Time) { ticks.Add(1) })
	s.StartFacts(func(time.Time) { rotations.Add(1) })
	require.Eventually(t, func() bool { return rotations.Load() >= 2 }, time.Second, time.Millisecond)

	s.StopFacts()
	stopped := rotations.Load()
	before := ticks.Load()
	require.Eventually(t, func() bool { return ticks.Load() > before+2 }, time.Second, time.Millisecond)
	assert.Equal(t, stopped, rotations.Load())
	assert.True(t, s.Running())
}

func TestCloseStopsBoth(t *testing.T) {
	s := newTestScheduler()

	var calls atomic.Int64
	s.Start(func(time.Time) { calls.Add(1) })
	s.StartFacts(func(time.Time) { calls.Add(1) })
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	s.Close()
	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

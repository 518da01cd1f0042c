// Package scheduler drives the periodic clock refresh and fun-fact rotation.
package scheduler

import (
	"sync"
	"time"

	"github.com/philtim/worldclock/clock"
)

const (
	// DefaultTickPeriod is the clock refresh period
	DefaultTickPeriod = time.Second
	// DefaultFactPeriod is the fun-fact rotation period
	DefaultFactPeriod = 30 * time.Second
)

// Options configures a Scheduler. Zero values select the defaults.
type Options struct {
	TickPeriod time.Duration
	FactPeriod time.Duration
	Clock      clock.Clock
}

// Scheduler owns two independent timers: the clock tick and the fun-fact
// rotation. Each has at most one active loop.
type Scheduler struct {
	tick  *loop
	facts *loop
}

// New creates a stopped Scheduler.
func New(opts Options) *Scheduler {
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = DefaultTickPeriod
	}
	if opts.FactPeriod <= 0 {
		opts.FactPeriod = DefaultFactPeriod
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Scheduler{
		tick:  &loop{period: opts.TickPeriod, clock: opts.Clock},
		facts: &loop{period: opts.FactPeriod, clock: opts.Clock},
	}
}

// Start begins calling onTick once per tick period with the instant
// captured for that tick. A running tick loop is stopped first.
func (s *Scheduler) Start(onTick func(now time.Time)) {
	s.tick.start(onTick)
}

// Stop cancels the tick loop. No onTick call starts after Stop returns.
// Stopping a stopped loop is a no-op. Stop must not be called from onTick.
func (s *Scheduler) Stop() {
	s.tick.stop()
}

// Running reports whether the tick loop is active.
func (s *Scheduler) Running() bool {
	return s.tick.running()
}

// StartFacts begins calling onRotate once per fact period, replacing any
// running rotation loop.
func (s *Scheduler) StartFacts(onRotate func(now time.Time)) {
	s.facts.start(onRotate)
}

// StopFacts cancels the rotation loop with the same guarantees as Stop.
func (s *Scheduler) StopFacts() {
	s.facts.stop()
}

// Close stops both loops.
func (s *Scheduler) Close() {
	s.tick.stop()
	s.facts.stop()
}

// loop runs fn on a ticker in its own goroutine.
type loop struct {
	period time.Duration
	clock  clock.Clock

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

func (l *loop) start(fn func(now time.Time)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopLocked()

	done := make(chan struct{})
	ticker := time.NewTicker(l.period)
	l.done = done
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// a tick and a stop may be ready together; stop wins
				select {
				case <-done:
					return
				default:
				}
				fn(l.clock.Now())
			}
		}
	}()
}

func (l *loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *loop) stopLocked() {
	if l.done == nil {
		return
	}
	close(l.done)
	l.done = nil
	l.wg.Wait()
}

func (l *loop) running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done != nil
}

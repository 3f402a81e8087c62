// Package timeutil abstracts wall-clock time so run timestamps, processing
// durations and poll intervals can be driven from tests.
package timeutil

import "time"

// Clock is the time source of the runner and the pending poller.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time                  { return time.Now() }
func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

func (RealClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// Stopwatch measures elapsed time on a Clock.
type Stopwatch struct {
	clock   Clock
	started time.Time
}

// StartStopwatch starts timing now.
func StartStopwatch(c Clock) Stopwatch {
	return Stopwatch{clock: c, started: c.Now()}
}

// Started is when the stopwatch was started.
func (s Stopwatch) Started() time.Time {
	return s.started
}

// Elapsed is the time since Started.
func (s Stopwatch) Elapsed() time.Duration {
	return s.clock.Since(s.started)
}

package timeutil

import (
	"sync"
	"time"
)

// MockClock is a Clock that only moves when told to.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	step    time.Duration
	tickers map[*mockTicker]struct{}
}

// NewMockClock returns a clock reading start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start, tickers: make(map[*mockTicker]struct{})}
}

// SetStep makes every reading advance the clock by d afterwards, so two
// successive readings differ by d. Tickers are not fired by stepping.
func (c *MockClock) SetStep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = d
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Advance moves the clock forward by d and delivers one tick to every ticker
// whose next tick is due.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	due := make([]*mockTicker, 0, len(c.tickers))
	for t := range c.tickers {
		if !now.Before(t.next) {
			due = append(due, t)
			for !now.Before(t.next) {
				t.next = t.next.Add(t.every)
			}
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		// Buffered by one; a slow reader loses ticks as with time.Ticker.
		select {
		case t.ch <- now:
		default:
		}
	}
}

func (c *MockClock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("timeutil: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTicker{clock: c, ch: make(chan time.Time, 1), every: d, next: c.now.Add(d)}
	c.tickers[t] = struct{}{}
	return t
}

// Tickers is the number of live tickers.
func (c *MockClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type mockTicker struct {
	clock *MockClock
	ch    chan time.Time
	every time.Duration
	next  time.Time
}

func (t *mockTicker) C() <-chan time.Time { return t.ch }

func (t *mockTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	delete(t.clock.tickers, t)
}

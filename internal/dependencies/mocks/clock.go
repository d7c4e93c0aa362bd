package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/quizgame/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Tickers only fire when the test calls Tick or Advance.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// NewTicker registers a ticker driven by Tick and Advance
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &MockTicker{interval: d, ch: make(chan time.Time, 16)}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward by d, firing one tick on every live ticker
// whose interval fits in d
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	now := c.currentTime
	tickers := c.liveTickers()
	c.mu.Unlock()

	for _, t := range tickers {
		if t.interval <= d {
			t.fire(now)
		}
	}
}

// Tick fires every live ticker once without moving the clock
func (c *MockClock) Tick() {
	c.mu.Lock()
	now := c.currentTime
	tickers := c.liveTickers()
	c.mu.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

// ActiveTickers returns the number of tickers that have not been stopped
func (c *MockClock) ActiveTickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.liveTickers())
}

func (c *MockClock) liveTickers() []*MockTicker {
	var live []*MockTicker
	for _, t := range c.tickers {
		if !t.Stopped() {
			live = append(live, t)
		}
	}
	c.tickers = live
	return live
}

// MockTicker is a Ticker fired manually through MockClock
type MockTicker struct {
	mu       sync.Mutex
	interval time.Duration
	ch       chan time.Time
	stopped  bool
}

// Ensure MockTicker implements Ticker
var _ clock.Ticker = (*MockTicker)(nil)

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop stops the ticker; pending ticks are discarded
func (t *MockTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stopped reports whether Stop was called
func (t *MockTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *MockTicker) fire(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	select {
	case t.ch <- now:
	default:
	}
}

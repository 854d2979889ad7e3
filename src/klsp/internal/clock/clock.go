package clock

import (
	"time"
)

// Clock abstracts the passage of time so that periodic work can be driven by tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep pauses the current goroutine for at least the duration d. A negative or zero duration causes Sleep to return immediately.
	Sleep(duration time.Duration)
	// NewTicker returns a Ticker delivering ticks every interval.
	NewTicker(interval time.Duration) Ticker
	// AfterFunc calls f in its own goroutine once duration has elapsed.
	AfterFunc(duration time.Duration, f func()) Timer
}

// Ticker is the subset of *time.Ticker used by callers.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is the subset of *time.Timer used by callers.
type Timer interface {
	Stop() bool
	Reset(duration time.Duration) bool
}

type clock struct{}

// New creates a new instance of Clock.
func New() Clock {
	return clock{}
}

func (clock) Now() time.Time {
	return time.Now()
}

func (clock) Sleep(duration time.Duration) {
	time.Sleep(duration)
}

func (clock) NewTicker(interval time.Duration) Ticker {
	return ticker{time.NewTicker(interval)}
}

func (clock) AfterFunc(duration time.Duration, f func()) Timer {
	return time.AfterFunc(duration, f)
}

type ticker struct {
	t *time.Ticker
}

func (t ticker) C() <-chan time.Time { return t.t.C }
func (t ticker) Stop()               { t.t.Stop() }

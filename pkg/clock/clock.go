// Package clock provides an injectable time source.
//
// Components that wait or compare timestamps take a Clock instead of
// calling the time package directly. Production code passes Real();
// tests pass Fake() and move time forward with Advance.
package clock

import "time"

// Clock abstracts the time operations used by the aggregator.
type Clock interface {
	Now() time.Time
	// After delivers the current time once d has elapsed. If d <= 0
	// the channel is ready immediately.
	After(d time.Duration) <-chan time.Time
	// NewTicker delivers ticks every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
	// Sleep blocks for at least d.
	Sleep(d time.Duration)
}

// Ticker delivers periodic ticks on C (capacity 1, late ticks are dropped).
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns the ticker off. C is not closed.
func (t *Ticker) Stop() { t.stop() }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) NewTicker(d time.Duration) *Ticker {
	t := time.NewTicker(d)
	return &Ticker{C: t.C, stop: t.Stop}
}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Package tick provides the periodic signal that drives dispatch attempts.
package tick

import "time"

// Intervals observed for each queued dispatch mode.
const (
	FIFOInterval    = 256 * time.Millisecond
	DelayedInterval = 1000 * time.Millisecond
)

// Source is a restartable ticker with a single consumer. A slow consumer
// sees at most one pending tick; missed ticks are coalesced, never queued.
//
// Source is owned by one goroutine: Start, Stop, C and Running must not be
// called concurrently.
type Source struct {
	ticker   *time.Ticker
	interval time.Duration
	count    uint64
}

// NewSource returns a stopped source.
func NewSource() *Source { return &Source{} }

// Start begins ticking every interval. Starting a running source with the
// same interval is a no-op; a different interval resets it.
func (s *Source) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}
	if s.ticker != nil {
		if s.interval == interval {
			return
		}
		s.ticker.Reset(interval)
		s.interval = interval
		return
	}
	s.ticker = time.NewTicker(interval)
	s.interval = interval
}

// Stop halts the source. No tick is delivered after Stop returns.
func (s *Source) Stop() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
}

// C returns the tick channel, or nil while stopped so a select on it blocks.
func (s *Source) C() <-chan time.Time {
	if s.ticker == nil {
		return nil
	}
	return s.ticker.C
}

// Running reports whether the source is started.
func (s *Source) Running() bool { return s.ticker != nil }

// Interval returns the interval of the last Start.
func (s *Source) Interval() time.Duration { return s.interval }

// Observe records that the consumer handled a tick and returns the running
// total. The count feeds server-generated request identifiers.
func (s *Source) Observe() uint64 {
	s.count++
	return s.count
}

// Count returns the number of observed ticks.
func (s *Source) Count() uint64 { return s.count }

package drive

import (
	"fmt"
	"time"

	"github.com/eclesh/welford"
)

// A tick this much later than the nominal interval counts as an overrun.
const overrunFactor = 1.5

// LoopStats tracks the spacing of control loop ticks.  The sleep between
// ticks is pacing only, so this is how late the loop actually runs.
type LoopStats struct {
	interval time.Duration
	last     time.Time
	stats    *welford.Stats

	Ticks    int
	Overruns int
}

func NewLoopStats(interval time.Duration) *LoopStats {
	return &LoopStats{
		interval: interval,
		stats:    welford.New(),
	}
}

// Mark records a tick and reports whether it came late.
func (s *LoopStats) Mark(now time.Time) bool {
	s.Ticks++
	if s.last.IsZero() {
		s.last = now
		return false
	}
	gap := now.Sub(s.last)
	s.last = now
	s.stats.Add(float64(gap))
	if float64(gap) > overrunFactor*float64(s.interval) {
		s.Overruns++
		return true
	}
	return false
}

func (s *LoopStats) Mean() time.Duration {
	if s.Ticks < 2 {
		return 0
	}
	return time.Duration(s.stats.Mean())
}

func (s *LoopStats) Stddev() time.Duration {
	if s.Ticks < 3 {
		return 0
	}
	return time.Duration(s.stats.Stddev())
}

func (s *LoopStats) String() string {
	return fmt.Sprintf("%d ticks, interval mean %v stddev %v, %d overruns",
		s.Ticks, s.Mean(), s.Stddev(), s.Overruns)
}

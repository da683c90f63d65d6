package poller

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default polling cadence.
const (
	DefaultBaseInterval = 2 * time.Second
	DefaultMaxInterval  = 30 * time.Second
	DefaultMultiplier   = 1.5
	DefaultMaxFailures  = 5
)

// Interval returns the wait after n consecutive failures:
// min(base * multiplier^n, max).
func Interval(base, max time.Duration, multiplier float64, n int) time.Duration {
	d := float64(base) * math.Pow(multiplier, float64(n))
	if d >= float64(max) {
		return max
	}
	return time.Duration(d)
}

// schedule tracks the poll interval across successes and failures.
// After every step the next failure yields the interval for failures+1.
type schedule struct {
	b *backoff.ExponentialBackOff
}

func newSchedule(base, max time.Duration, multiplier float64) *schedule {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(base),
		backoff.WithMaxInterval(max),
		backoff.WithMultiplier(multiplier),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
	s := &schedule{b: b}
	s.success()
	return s
}

// success resets the cadence and returns the base interval.
func (s *schedule) success() time.Duration {
	s.b.Reset()
	return s.b.NextBackOff()
}

// failure slows the cadence by one step and returns the new interval.
func (s *schedule) failure() time.Duration {
	return s.b.NextBackOff()
}

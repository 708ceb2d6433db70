package scenario

import (
	"math/rand"
	"time"
)

const (
	// DefaultThinkMin and DefaultThinkMax bound the pause a simulated user
	// takes between login attempts.
	DefaultThinkMin = 500 * time.Millisecond
	DefaultThinkMax = 2 * time.Second
)

// ThinkTime draws a uniformly random pause from [Min, Max]. The zero value
// draws from the default range.
type ThinkTime struct {
	Min time.Duration
	Max time.Duration

	// Int63n overrides the random source; nil means math/rand. Tests
	// inject a deterministic function.
	Int63n func(n int64) int64
}

// Next returns the pause to take before the following attempt.
func (t ThinkTime) Next() time.Duration {
	lo, hi := t.Min, t.Max
	if lo <= 0 && hi <= 0 {
		lo, hi = DefaultThinkMin, DefaultThinkMax
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi == lo {
		return lo
	}
	rng := t.Int63n
	if rng == nil {
		rng = rand.Int63n
	}
	return lo + time.Duration(rng(int64(hi-lo)+1))
}

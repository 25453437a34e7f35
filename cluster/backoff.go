package cluster

import "time"

// Backoff implements the exponential backoff schedule used by lookup
// retries (§4.4): initial 10ms, factor 2, capped at 500ms, with a total
// budget enforced by the caller.
type Backoff struct {
	initial time.Duration
	factor  float64
	cap     time.Duration

	duration time.Duration
}

// NewLookupBackoff returns the backoff schedule mandated by §4.4.
func NewLookupBackoff() *Backoff {
	return NewBackoff(10*time.Millisecond, 2, 500*time.Millisecond)
}

func NewBackoff(initial time.Duration, factor float64, cap time.Duration) *Backoff {
	return &Backoff{initial: initial, factor: factor, cap: cap}
}

// Next advances the schedule and returns the duration to wait before the
// next attempt.
func (b *Backoff) Next() time.Duration {
	if b.duration == 0 {
		b.duration = b.initial
	} else {
		b.duration = time.Duration(float64(b.duration) * b.factor)
	}
	if b.duration > b.cap {
		b.duration = b.cap
	}
	return b.duration
}

// Reset returns the schedule to its initial state.
func (b *Backoff) Reset() {
	b.duration = 0
}

package gateway

import (
	"math"
	"math/rand"
	"time"
)

// BackoffPolicy computes retry delays: exponential growth from BaseDelay by
// Factor, capped at MaxDelay, with randomized jitter. A reset hint from the
// destination floors the result, never the other way around.
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Factor      float64
	MaxDelay    time.Duration
}

// DefaultBackoffPolicy returns a policy matching the engine's config defaults
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		Factor:      2.0,
		MaxDelay:    30 * time.Second,
	}
}

// Delay returns how long to sleep before retry number attempt (0-based).
// hint is the destination's explicit reset hint, zero when absent.
func (p BackoffPolicy) Delay(attempt int, hint time.Duration) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	factor := p.Factor
	if factor < 1 {
		factor = 2.0
	}

	d := time.Duration(float64(base) * math.Pow(factor, float64(attempt)))
	if p.MaxDelay > 0 && (d > p.MaxDelay || d <= 0) {
		d = p.MaxDelay
	}

	// Up to 25% jitter so simultaneous retries spread out
	d += time.Duration(rand.Int63n(int64(d)/4 + 1))

	if d < hint {
		return hint
	}
	return d
}

package gateway

import (
	"context"
	"sync"
	"time"
)

// Limiter implements sliding-window admission control for outbound calls.
// The budget starts from the destination's published quota and is refreshed
// from rate-limit response headers whenever the destination returns them, so
// concurrent migrators sharing one store never overrun the real quota.
type Limiter struct {
	mu        sync.Mutex
	budget    int // requests per window
	window    time.Duration
	remaining int
	resetAt   time.Time
}

// NewLimiter creates a limiter with the configured default quota
func NewLimiter(budget int, window time.Duration) *Limiter {
	if budget < 1 {
		budget = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &Limiter{
		budget:    budget,
		window:    window,
		remaining: budget,
		resetAt:   time.Now().Add(window),
	}
}

// Wait blocks until the current window admits one more request or ctx is
// cancelled. The wait is a timer, not a busy loop.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := time.Now()

		if now.After(l.resetAt) {
			l.remaining = l.budget
			l.resetAt = now.Add(l.window)
		}

		if l.remaining > 0 {
			l.remaining--
			l.mu.Unlock()
			return nil
		}

		sleep := time.Until(l.resetAt)
		l.mu.Unlock()

		if sleep <= 0 {
			continue
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Update refreshes the budget state from destination response headers.
// Called after every response, success or failure, so subsequent calls see
// the freshest quota.
func (l *Limiter) Update(remaining int, resetIn time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if remaining >= 0 {
		l.remaining = remaining
	}
	if resetIn > 0 {
		l.resetAt = time.Now().Add(resetIn)
	}
}

// Remaining returns the number of requests the current window still admits
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Now().After(l.resetAt) {
		return l.budget
	}
	return l.remaining
}

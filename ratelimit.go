package grit

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRate     = 10
	defaultWindow   = time.Second
	defaultIdentity = "default"

	// maxLimiterWait bounds how long an acquisition sleeps before the
	// limiter gives up and lets the request through anyway.
	maxLimiterWait = time.Minute
)

// RateLimiter bounds call frequency using a token bucket that replenishes
// ratePerWindow permits every window, smoothed to one permit every
// window/ratePerWindow (leaky-bucket pacing).
//
// The limiter is advisory, not a hard admission gate: [RateLimiter.Acquire]
// never fails on missing capacity. If a permit would take longer than one
// minute to become available, the acquisition proceeds without one.
//
// The bucket state is the only cross-call mutable state in the library and
// serializes concurrent acquisitions fairly, in arrival order. Two
// RateLimiter values share a limiting domain only if they are the same
// instance; the identity string is a label for logs, not a registry key.
type RateLimiter struct {
	ratePerWindow int
	window        time.Duration
	identity      string
	bucket        *rate.Limiter
}

// NewRateLimiter creates a [RateLimiter] allowing ratePerWindow acquisitions
// per window. The identity labels the limiting domain in logs; empty defaults
// to "default". The bucket is constructed eagerly, so the returned limiter is
// immediately shareable across goroutines.
//
// Returns an error if ratePerWindow or window is not positive.
func NewRateLimiter(ratePerWindow int, window time.Duration, identity string) (*RateLimiter, error) {
	if ratePerWindow <= 0 {
		return nil, errors.New("rate must be positive")
	}
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	if identity == "" {
		identity = defaultIdentity
	}

	return &RateLimiter{
		ratePerWindow: ratePerWindow,
		window:        window,
		identity:      identity,
		bucket:        rate.NewLimiter(rate.Every(window/time.Duration(ratePerWindow)), 1),
	}, nil
}

// DefaultRateLimiter returns a fresh limiter with the default policy of 10
// acquisitions per second under the identity "default".
//
// Each call returns a new, independent bucket.
func DefaultRateLimiter() *RateLimiter {
	limiter, err := NewRateLimiter(defaultRate, defaultWindow, defaultIdentity)
	if err != nil {
		// unreachable with the constants above
		panic(err)
	}
	return limiter
}

// Rate returns the number of acquisitions allowed per window.
func (l *RateLimiter) Rate() int {
	return l.ratePerWindow
}

// Window returns the replenishment window.
func (l *RateLimiter) Window() time.Duration {
	return l.window
}

// Identity returns the label for this limiting domain.
func (l *RateLimiter) Identity() string {
	return l.identity
}

// Acquire blocks until a permit is available, the advisory wait budget of one
// minute elapses, or ctx is cancelled.
//
// Missing capacity is never an error: once the budget elapses the request
// proceeds without a permit. The only error Acquire returns is ctx.Err() when
// the caller's context ends first. A nil limiter admits everything.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	if l == nil || l.bucket == nil {
		return nil
	}

	reservation := l.bucket.Reserve()
	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}

	// past the budget the limiter is advisory: give the permit back and
	// proceed after the bounded wait
	advisory := delay > maxLimiterWait
	if advisory {
		reservation.Cancel()
		delay = maxLimiterWait
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		if !advisory {
			reservation.Cancel()
		}
		return ctx.Err()
	}
}

package grit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"slices"
	"time"
)

const (
	defaultMaxAttempts = 1
	defaultMinDelay    = 0
	defaultMaxDelay    = 10 * time.Second
)

// Retryer encodes a retry schedule with exponential backoff and the set of
// failure kinds that justify re-attempting a request.
//
// Attempt k (counting from 1) is followed, on retryable failure, by a wait of
// min(MaxDelay, MinDelay·2^(k-1)). MaxAttempts=1 means a single try and no
// retries. [FailureResponseEvaluation] and [FailureContentCallback] are always
// retryable in addition to the kinds listed in RetryOn; every other kind
// propagates immediately without consuming the remaining attempts.
//
// Retryer is a value object: construct it once per call family and share it
// freely. Use [DefaultRetryer] for a fresh copy of the defaults.
type Retryer struct {
	// MaxAttempts is the total number of tries, including the first.
	// Values below 1 behave as 1.
	MaxAttempts int

	// MinDelay is the starting backoff delay.
	MinDelay time.Duration

	// MaxDelay caps the exponential backoff growth.
	MaxDelay time.Duration

	// RetryOn lists the failure kinds that are retryable beyond the two
	// always-retryable kinds.
	RetryOn []FailureKind
}

// DefaultRetryer returns a fresh Retryer with the default schedule: a single
// attempt, no starting delay, a 10 second backoff cap, and transport and
// timeout failures listed as retryable.
//
// Each call returns a new value, so callers can tweak the result without
// affecting other call sites.
func DefaultRetryer() *Retryer {
	return &Retryer{
		MaxAttempts: defaultMaxAttempts,
		MinDelay:    defaultMinDelay,
		MaxDelay:    defaultMaxDelay,
		RetryOn:     []FailureKind{FailureTransport, FailureTimeout},
	}
}

// retryable reports whether a failure of the given kind should be re-attempted.
func (r *Retryer) retryable(kind FailureKind) bool {
	if kind == FailureResponseEvaluation || kind == FailureContentCallback {
		return true
	}
	return slices.Contains(r.RetryOn, kind)
}

// backoff returns the wait that follows the given 1-based attempt number.
func (r *Retryer) backoff(attempt int) time.Duration {
	delay := r.MinDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= r.MaxDelay {
			delay = r.MaxDelay
			break
		}
	}
	if delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

// do runs op until it succeeds, a non-retryable failure occurs, or the
// attempt budget is exhausted. The last failure is returned unchanged; the
// driver adds no wrapping. Caller cancellation aborts immediately, both
// mid-attempt and during a backoff wait, and is never retried.
func (r *Retryer) do(ctx context.Context, logger *slog.Logger, op func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		// cancellation of the caller context is never retryable
		if ctx.Err() != nil {
			return err
		}

		kind := classifyFailure(err)
		if !r.retryable(kind) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := r.backoff(attempt)
		logger.Debug("attempt failed, backing off",
			"attempt", attempt,
			"kind", kind.String(),
			"delay", delay.String(),
			"error", err.Error(),
		)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}

// classifyFailure maps an error onto the closed [FailureKind] set.
//
// Evaluation and callback failures are recognized by type anywhere in the
// wrap chain. Timeouts are recognized both as context deadline expiry and as
// net.Error timeouts. Everything else network-shaped (url errors, op errors,
// truncated bodies) is a transport failure; the remainder is [FailureUnknown].
func classifyFailure(err error) FailureKind {
	var evalErr *ResponseEvaluationError
	if errors.As(err, &evalErr) {
		return FailureResponseEvaluation
	}

	var callbackErr *ContentCallbackError
	if errors.As(err, &callbackErr) {
		return FailureContentCallback
	}

	// caller cancellation is terminal, not a transport condition
	if errors.Is(err, context.Canceled) {
		return FailureUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureTransport
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return FailureTransport
	}

	return FailureUnknown
}

package grit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PollConfig drives a [Poll] loop over a structured request.
//
// Timeout bounds the whole loop; Interval is the cooperative sleep between
// iterations. Both must be positive. SuccessCondition inspects each decoded
// response and ends the loop by returning true.
type PollConfig[T any] struct {
	// Timeout is the overall poll deadline, measured from the first
	// request. Distinct from RequestConfig.Timeout, which bounds each
	// individual HTTP attempt inside an iteration.
	Timeout time.Duration

	// Interval is the sleep between iterations.
	Interval time.Duration

	// SuccessCondition reports whether the decoded content is the terminal
	// state the caller is waiting for.
	SuccessCondition func(T) bool
}

// Poll repeatedly issues a structured request until the success condition
// holds or the poll deadline passes.
//
// Each iteration runs the full [RequestStructured] pipeline, with its own
// retry and rate-limit governance independent of the poll-level timeout. An
// iteration failure ends the poll immediately with that failure; the poller
// itself never retries a failed pipeline. When the deadline passes without
// success the poll fails with [*PollTimeoutError].
//
// The success condition runs inside the same panic recovery boundary as
// [RetryOnContent] predicates. Cancellation of ctx aborts the loop at any
// suspension point.
func Poll[T any](ctx context.Context, url string, cfg *RequestConfig, pollCfg PollConfig[T]) (*StructuredResponse[T], error) {
	if pollCfg.Timeout <= 0 {
		return nil, &InvalidArgumentError{Reason: "poll timeout must be positive"}
	}
	if pollCfg.Interval <= 0 {
		return nil, &InvalidArgumentError{Reason: "poll interval must be positive"}
	}
	if pollCfg.SuccessCondition == nil {
		return nil, &InvalidArgumentError{Reason: "poll success condition is required"}
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logger := cfg.logger().With("poll_id", uuid.NewString(), "url", url)
	logger.Debug("polling started",
		"timeout", pollCfg.Timeout.String(),
		"interval", pollCfg.Interval.String(),
	)

	start := time.Now()
	for elapsed := time.Duration(0); elapsed < pollCfg.Timeout; elapsed = time.Since(start) {
		resp, err := RequestStructured[T](ctx, url, cfg, nil)
		if err != nil {
			return nil, err
		}

		done, err := invokeConditionSafe(pollCfg.SuccessCondition, resp.StructuredContent, logger)
		if err != nil {
			return nil, err
		}
		if done {
			logger.Debug("poll condition met", "elapsed", time.Since(start).String())
			return resp, nil
		}

		select {
		case <-time.After(pollCfg.Interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		logger.Debug("poll condition not met yet", "elapsed", time.Since(start).String())
	}

	return nil, &PollTimeoutError{URL: url, Timeout: pollCfg.Timeout}
}

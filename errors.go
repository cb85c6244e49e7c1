package grit

import (
	"fmt"
	"time"
)

// ResponseEvaluationError reports an HTTP status code outside the acceptable
// set configured for the request.
//
// The error carries the status code and the text body (empty if text download
// was disabled). The message is plain diagnostic data; callers that need the
// pieces should use the struct fields rather than parsing the message.
//
// ResponseEvaluationError is always retryable, regardless of the
// [Retryer.RetryOn] list.
type ResponseEvaluationError struct {
	// StatusCode is the HTTP status code that failed evaluation.
	StatusCode int

	// Body is the response text content at evaluation time.
	// Empty when text download is disabled.
	Body string
}

func (e *ResponseEvaluationError) Error() string {
	return fmt.Sprintf("response evaluation failed: status=%d, text content (if loaded): %s", e.StatusCode, e.Body)
}

// ContentCallbackError reports that a structured response decoded cleanly but
// was rejected by the caller's content retry predicate (see [RetryOnContent]).
//
// ContentCallbackError is always retryable, regardless of the
// [Retryer.RetryOn] list.
type ContentCallbackError struct{}

func (e *ContentCallbackError) Error() string {
	return "structured content retry callback returned true"
}

// PollTimeoutError reports that a [Poll] loop reached its configured timeout
// without the success condition holding.
//
// The poller never retries past its deadline; the caller may start a new poll.
type PollTimeoutError struct {
	// URL is the polled target.
	URL string

	// Timeout is the configured poll deadline that was exceeded.
	Timeout time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("poll timeout reached after %s polling %s", e.Timeout, e.URL)
}

// InvalidArgumentError reports a malformed call before any network activity:
// mismatched urls/payloads lengths in batch dispatch, an empty-but-set
// acceptable-code list, or non-positive poll timings.
//
// InvalidArgumentError is never retried.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

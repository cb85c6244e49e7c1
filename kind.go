package grit

import "fmt"

// FailureKind identifies the class of a request failure for retry decisions.
//
// FailureKind is a string type that can hold one of four predefined values:
// [FailureTransport], [FailureTimeout], [FailureResponseEvaluation], or
// [FailureContentCallback]. Using a string type keeps logs and YAML profiles
// human-readable while maintaining type safety through the defined constants.
//
// The retry driver matches on kind: a failure retries only when its kind is
// listed in [Retryer.RetryOn], except [FailureResponseEvaluation] and
// [FailureContentCallback], which are always retryable. Failures outside the
// closed set (for example a JSON decode error, or the caller's own
// cancellation) are never retried.
type FailureKind string

const (
	// FailureTransport indicates a connection or protocol level failure:
	// dial errors, resets, malformed responses, broken body reads.
	FailureTransport FailureKind = "transport"

	// FailureTimeout indicates the per-call timeout elapsed before the
	// transport call completed.
	FailureTimeout FailureKind = "timeout"

	// FailureResponseEvaluation indicates the HTTP status code fell outside
	// the acceptable set. Always retryable.
	FailureResponseEvaluation FailureKind = "response_evaluation"

	// FailureContentCallback indicates a decoded structured response was
	// rejected by the caller's retry predicate. Always retryable.
	FailureContentCallback FailureKind = "content_callback"

	// FailureUnknown indicates a failure outside the closed kind set.
	// Never retryable.
	FailureUnknown FailureKind = "unknown"
)

// String returns the string representation of the failure kind.
// This implements the fmt.Stringer interface.
func (k FailureKind) String() string {
	return string(k)
}

// ParseFailureKind converts a string into a [FailureKind].
//
// It accepts the canonical names used in logs and YAML profiles: "transport",
// "timeout", "response_evaluation", "content_callback" and "unknown".
// Unrecognised names return an error.
func ParseFailureKind(s string) (FailureKind, error) {
	switch kind := FailureKind(s); kind {
	case FailureTransport, FailureTimeout, FailureResponseEvaluation, FailureContentCallback, FailureUnknown:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown failure kind %q", s)
	}
}

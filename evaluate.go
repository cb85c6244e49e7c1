package grit

import (
	"net/http"
	"slices"
)

// EvaluateResponse classifies a response as acceptable or not.
//
// It returns nil when statusCode is in acceptableCodes, and a
// [*ResponseEvaluationError] carrying the status code and text content
// otherwise. A nil or empty acceptableCodes defaults to {200}. textContent is
// whatever body text the caller materialized; pass an empty string when text
// download is disabled.
//
// EvaluateResponse is a pure function with no side effects beyond the
// returned error.
func EvaluateResponse(statusCode int, acceptableCodes []int, textContent string) error {
	if len(acceptableCodes) == 0 {
		acceptableCodes = []int{http.StatusOK}
	}
	if slices.Contains(acceptableCodes, statusCode) {
		return nil
	}
	return &ResponseEvaluationError{StatusCode: statusCode, Body: textContent}
}

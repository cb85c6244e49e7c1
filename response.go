package grit

import (
	"net/http"

	"github.com/tidwall/gjson"
)

// Response holds the outcome of a successfully evaluated request.
//
// Response is immutable after creation. JSONContent and TextContent are only
// populated when the corresponding download flag was on. JSONContent is
// always a mapping: non-mapping JSON bodies (arrays, scalars, null) are
// wrapped as {"content": value}.
type Response struct {
	// FinalURL is the target URL after any redirects.
	FinalURL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Headers are the response headers.
	Headers http.Header

	// JSONContent is the decoded response body as a mapping.
	// Empty when JSON download was off.
	JSONContent map[string]any

	// TextContent is the raw response body as a string.
	// Empty when text download was off.
	TextContent string

	raw []byte
}

// Field evaluates a JSON path expression against the raw response body and
// returns the matched value flattened to a string.
//
// Paths use dot notation with array indexing, for example "data.items.0.id".
// The second return value is false when the path does not match or no body
// was downloaded. Field lets callers pull one value out of a response
// without declaring a schema for [RequestStructured].
func (r *Response) Field(path string) (string, bool) {
	if r == nil || len(r.raw) == 0 {
		return "", false
	}
	result := gjson.GetBytes(r.raw, path)
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}

// StructuredResponse is a [Response] whose JSON content has additionally
// been deserialized into the caller's schema type.
type StructuredResponse[T any] struct {
	Response

	// StructuredContent is the JSON content decoded into T.
	StructuredContent T
}

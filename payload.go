package grit

import (
	"encoding/json"
	"fmt"
)

const jsonContentType = "application/json"

// Payload is an optional request body in one of two mutually exclusive
// forms: raw bytes with an explicit content type, or a Go value serialized
// as JSON.
//
// Payload is immutable after creation via [RawPayload] or [JSONPayload].
// A nil *Payload means "no body".
type Payload struct {
	content     []byte
	contentType string
	jsonValue   any
	isJSON      bool
}

// RawPayload creates a [Payload] carrying content verbatim. contentType, when
// non-empty, wins the Content-Type header assembly step; pass an empty string
// to leave the header untouched.
func RawPayload(content []byte, contentType string) *Payload {
	return &Payload{
		content:     copyBytes(content),
		contentType: contentType,
	}
}

// JSONPayload creates a [Payload] that serializes v as the JSON request body.
// The Content-Type header is set to "application/json".
func JSONPayload(v any) *Payload {
	return &Payload{
		jsonValue: v,
		isJSON:    true,
	}
}

// Content returns a copy of the raw body content, or nil for JSON payloads.
func (p *Payload) Content() []byte {
	if p == nil {
		return nil
	}
	return copyBytes(p.content)
}

// ContentType returns the content type the payload contributes to header
// assembly: the explicit type for raw payloads, "application/json" for JSON
// payloads, empty otherwise.
func (p *Payload) ContentType() string {
	if p == nil {
		return ""
	}
	if p.isJSON {
		return jsonContentType
	}
	return p.contentType
}

// JSON returns the value serialized for JSON payloads and whether the
// payload is in JSON form.
func (p *Payload) JSON() (any, bool) {
	if p == nil {
		return nil, false
	}
	return p.jsonValue, p.isJSON
}

// body materializes the bytes to send. JSON payloads are marshaled here, once
// per attempt, so token-style values that implement json.Marshaler always
// serialize fresh.
func (p *Payload) body() ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	if p.isJSON {
		encoded, err := json.Marshal(p.jsonValue)
		if err != nil {
			return nil, fmt.Errorf("encode json payload: %w", err)
		}
		return encoded, nil
	}
	return p.content, nil
}

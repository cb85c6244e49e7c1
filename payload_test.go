package grit

import (
	"strings"
	"testing"
)

func TestRawPayload(t *testing.T) {
	content := []byte("field=value")
	p := RawPayload(content, "application/x-www-form-urlencoded")

	if got := string(p.Content()); got != "field=value" {
		t.Errorf("Content() = %q, want %q", got, "field=value")
	}
	if got := p.ContentType(); got != "application/x-www-form-urlencoded" {
		t.Errorf("ContentType() = %q, want the explicit type", got)
	}
	if _, isJSON := p.JSON(); isJSON {
		t.Error("JSON() reports true for a raw payload")
	}

	body, err := p.body()
	if err != nil {
		t.Fatalf("body() error = %v", err)
	}
	if string(body) != "field=value" {
		t.Errorf("body() = %q, want %q", body, "field=value")
	}
}

// TestRawPayload_ContentIsCopied verifies the payload is insulated from
// later mutation of the caller's slice, and vice versa.
func TestRawPayload_ContentIsCopied(t *testing.T) {
	content := []byte("original")
	p := RawPayload(content, "")

	content[0] = 'X'
	if got := string(p.Content()); got != "original" {
		t.Errorf("Content() = %q, payload shares the caller's slice", got)
	}

	returned := p.Content()
	returned[0] = 'Y'
	if got := string(p.Content()); got != "original" {
		t.Errorf("Content() = %q, getter returned the internal slice", got)
	}
}

func TestRawPayload_EmptyContentType(t *testing.T) {
	p := RawPayload([]byte("data"), "")
	if got := p.ContentType(); got != "" {
		t.Errorf("ContentType() = %q, want empty", got)
	}
}

func TestJSONPayload(t *testing.T) {
	p := JSONPayload(map[string]any{"name": "grit", "count": 2})

	if got := p.ContentType(); got != "application/json" {
		t.Errorf("ContentType() = %q, want application/json", got)
	}
	value, isJSON := p.JSON()
	if !isJSON {
		t.Fatal("JSON() reports false for a JSON payload")
	}
	if value == nil {
		t.Fatal("JSON() value = nil")
	}

	body, err := p.body()
	if err != nil {
		t.Fatalf("body() error = %v", err)
	}
	if !strings.Contains(string(body), `"name":"grit"`) {
		t.Errorf("body() = %s, want marshaled JSON", body)
	}
}

func TestJSONPayload_MarshalError(t *testing.T) {
	p := JSONPayload(func() {})

	_, err := p.body()
	if err == nil {
		t.Fatal("body() expected error for an unmarshalable value, got nil")
	}
	if !strings.Contains(err.Error(), "encode json payload") {
		t.Errorf("error = %v, want an encode failure", err)
	}
}

func TestPayload_NilSafe(t *testing.T) {
	var p *Payload

	if p.Content() != nil {
		t.Error("Content() on nil payload should be nil")
	}
	if p.ContentType() != "" {
		t.Error("ContentType() on nil payload should be empty")
	}
	if _, isJSON := p.JSON(); isJSON {
		t.Error("JSON() on nil payload should report false")
	}
	body, err := p.body()
	if err != nil || body != nil {
		t.Errorf("body() on nil payload = (%v, %v), want (nil, nil)", body, err)
	}
}

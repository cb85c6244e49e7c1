package grit

import "testing"

func TestResponse_Field(t *testing.T) {
	raw := []byte(`{
		"name": "grit",
		"count": 7,
		"active": true,
		"data": {
			"items": [
				{"id": "a1"},
				{"id": "b2"}
			]
		}
	}`)
	resp := &Response{raw: raw}

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"top level string", "name", "grit", true},
		{"number flattened", "count", "7", true},
		{"boolean flattened", "active", "true", true},
		{"nested array index", "data.items.0.id", "a1", true},
		{"second element", "data.items.1.id", "b2", true},
		{"missing path", "data.missing", "", false},
		{"missing index", "data.items.5.id", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resp.Field(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Field(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Field(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResponse_Field_NoBody(t *testing.T) {
	resp := &Response{}
	if _, ok := resp.Field("anything"); ok {
		t.Error("Field() ok = true on a response with no body")
	}

	var nilResp *Response
	if _, ok := nilResp.Field("anything"); ok {
		t.Error("Field() ok = true on a nil response")
	}
}

func TestStructuredResponse_EmbedsResponse(t *testing.T) {
	type schema struct {
		Name string `json:"name"`
	}

	resp := &StructuredResponse[schema]{
		Response:          Response{StatusCode: 200, TextContent: `{"name": "grit"}`},
		StructuredContent: schema{Name: "grit"},
	}

	// Response fields are reachable through the embedding
	if resp.StatusCode != 200 {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.StructuredContent.Name != "grit" {
		t.Errorf("StructuredContent.Name = %q, want %q", resp.StructuredContent.Name, "grit")
	}
}

package grit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRequestMany_OrderedResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"path": %q}`, r.URL.Path)
	}))
	defer server.Close()

	urls := []string{server.URL + "/a", server.URL + "/b", server.URL + "/c"}

	results, err := RequestMany(context.Background(), urls, testConfig(), nil)
	if err != nil {
		t.Fatalf("RequestMany() error = %v", err)
	}
	if len(results) != len(urls) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(urls))
	}

	for i, want := range []string{"/a", "/b", "/c"} {
		if got := results[i].JSONContent["path"]; got != want {
			t.Errorf("results[%d] path = %v, want %v", i, got, want)
		}
	}
}

func TestRequestMany_EmptyURLs(t *testing.T) {
	results, err := RequestMany(context.Background(), nil, testConfig(), nil)
	if err != nil {
		t.Fatalf("RequestMany() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestRequestMany_PayloadCountMismatch(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	urls := []string{server.URL + "/a", server.URL + "/b"}
	payloads := []*Payload{JSONPayload(map[string]int{"id": 1})}

	results, err := RequestMany(context.Background(), urls, testConfig(), payloads)
	if results != nil {
		t.Errorf("RequestMany() results = %v, want nil", results)
	}

	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error is %T, want *InvalidArgumentError", err)
	}
	if !strings.Contains(err.Error(), "number of urls (2) and payloads (1)") {
		t.Errorf("error = %v, want the count mismatch spelled out", err)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("server calls = %d, want 0 before validation passes", got)
	}
}

// TestRequestMany_FirstFailureCancelsSiblings verifies the all-or-nothing
// contract: one failing element surfaces its error and the in-flight sibling
// is cancelled rather than run to completion.
func TestRequestMany_FirstFailureCancelsSiblings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	urls := []string{server.URL + "/slow", server.URL + "/fail"}

	start := time.Now()
	results, err := RequestMany(context.Background(), urls, testConfig(), nil)
	elapsed := time.Since(start)

	if results != nil {
		t.Errorf("RequestMany() results = %v, want nil on failure", results)
	}

	var evalErr *ResponseEvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("error is %T, want *ResponseEvaluationError", err)
	}
	if evalErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", evalErr.StatusCode)
	}
	if elapsed >= time.Second {
		t.Errorf("elapsed = %v, the slow sibling was not cancelled", elapsed)
	}
}

func TestRequestMany_PayloadsMatchedByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Method = http.MethodPost

	urls := []string{server.URL + "/a", server.URL + "/b"}
	payloads := []*Payload{
		JSONPayload(map[string]int{"id": 1}),
		JSONPayload(map[string]int{"id": 2}),
	}

	results, err := RequestMany(context.Background(), urls, cfg, payloads)
	if err != nil {
		t.Fatalf("RequestMany() error = %v", err)
	}

	for i, want := range []float64{1, 2} {
		if got := results[i].JSONContent["id"]; got != want {
			t.Errorf("results[%d] id = %v, want %v", i, got, want)
		}
	}
}

// TestRequestMany_SharedLimiterPacesBatch verifies a limiter on the config
// governs the whole batch, not each element in isolation.
func TestRequestMany_SharedLimiterPacesBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	urls := []string{server.URL + "/1", server.URL + "/2", server.URL + "/3"}

	start := time.Now()
	limiter, err := NewRateLimiter(1, 100*time.Millisecond, "batch-test")
	if err != nil {
		t.Fatalf("NewRateLimiter() error = %v", err)
	}

	cfg := testConfig()
	cfg.Limiter = limiter

	if _, err := RequestMany(context.Background(), urls, cfg, nil); err != nil {
		t.Fatalf("RequestMany() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("elapsed = %v, want at least two rate windows for three calls", elapsed)
	}
}

func TestRequestStructuredMany_OrderedResults(t *testing.T) {
	type pathBody struct {
		Path string `json:"path"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"path": %q}`, r.URL.Path)
	}))
	defer server.Close()

	cfg := &RequestConfig{Logger: testLogger()}
	urls := []string{server.URL + "/x", server.URL + "/y", server.URL + "/z"}

	results, err := RequestStructuredMany[pathBody](context.Background(), urls, cfg, nil)
	if err != nil {
		t.Fatalf("RequestStructuredMany() error = %v", err)
	}
	if len(results) != len(urls) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(urls))
	}

	for i, want := range []string{"/x", "/y", "/z"} {
		if got := results[i].StructuredContent.Path; got != want {
			t.Errorf("results[%d] path = %q, want %q", i, got, want)
		}
		if results[i].StatusCode != http.StatusOK {
			t.Errorf("results[%d] status = %d, want 200", i, results[i].StatusCode)
		}
	}

	if cfg.DownloadJSONContent {
		t.Error("caller config was mutated to force the JSON download")
	}
}

func TestRequestStructuredMany_PayloadCountMismatch(t *testing.T) {
	type empty struct{}

	urls := []string{"http://localhost/a", "http://localhost/b", "http://localhost/c"}
	payloads := []*Payload{JSONPayload(1)}

	_, err := RequestStructuredMany[empty](context.Background(), urls, nil, payloads)

	var invalidErr *InvalidArgumentError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("error is %T, want *InvalidArgumentError", err)
	}
	if !strings.Contains(err.Error(), "number of urls (3) and payloads (1)") {
		t.Errorf("error = %v, want the count mismatch spelled out", err)
	}
}

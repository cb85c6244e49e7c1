package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// jobState tracks when a mock job was first requested.
type jobState struct {
	startedAt time.Time
}

// StartMockAPIServer runs a small JSON API exercised by the demo.
//
// Routes:
//
//	/status        always healthy, returns {"service": "demo", "status": "ok"}
//	/flaky?key=K   returns 503 on the first two calls per key, then 200
//	/jobs?id=I     job advances pending → running → done over ~2 seconds
//
// Call this in a goroutine before issuing demo requests.
func StartMockAPIServer(addr string) {
	var (
		mu       sync.Mutex
		failures = make(map[string]int)
		jobs     = make(map[string]*jobState)
	)

	http.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"service": "demo",
			"status":  "ok",
		})
	})

	http.HandleFunc("/flaky", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")

		mu.Lock()
		failures[key]++
		count := failures[key]
		mu.Unlock()

		// the first two calls per key fail, later calls succeed
		if count <= 2 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if err := json.NewEncoder(w).Encode(map[string]string{"error": "temporarily unavailable"}); err != nil {
				slog.Error("failed to write response", "error", err)
			}
			return
		}

		writeJSON(w, map[string]any{
			"key":      key,
			"attempts": count,
		})
	})

	http.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")

		mu.Lock()
		job, exists := jobs[id]
		if !exists {
			job = &jobState{startedAt: time.Now()}
			jobs[id] = job
		}
		elapsed := time.Since(job.startedAt)
		mu.Unlock()

		state := "pending"
		switch {
		case elapsed > 2*time.Second:
			state = "done"
		case elapsed > time.Second:
			state = "running"
		}

		writeJSON(w, map[string]string{
			"id":    id,
			"state": state,
		})
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

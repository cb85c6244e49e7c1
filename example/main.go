package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-grit/grit"
	"github.com/go-grit/grit/profile"
)

// jobStatus mirrors the JSON body served by /jobs.
type jobStatus struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// demoProfiles is kept inline so the demo runs from any directory.
const demoProfiles = `
profiles:
  demo:
    timeout: 5s
    headers:
      X-Demo: "1"
    rate_limit:
      rate: 5
      window: 1s
    retry:
      attempts: 3
      min_delay: 100ms
`

func main() {
	// start mock server (see mock_server.go)
	go StartMockAPIServer(":9999")
	time.Sleep(100 * time.Millisecond)

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   grit demo                                           ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   1. plain GET against a healthy endpoint             ║")
	fmt.Println("  ║   2. retries against an endpoint that fails twice     ║")
	fmt.Println("  ║   3. a batch of requests dispatched concurrently      ║")
	fmt.Println("  ║   4. polling a job until it reports done              ║")
	fmt.Println("  ║   5. the same, configured from a YAML profile         ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling so Ctrl+C aborts cleanly
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. plain GET with the default config
	resp, err := grit.Request(ctx, "http://localhost:9999/status", nil, nil)
	if err != nil {
		slog.Error("status request failed", "error", err)
		os.Exit(1)
	}
	status, _ := resp.Field("status")
	fmt.Printf("status endpoint: code=%d status=%s\n", resp.StatusCode, status)

	// 2. retries: /flaky answers 503 twice before succeeding, and
	// unacceptable status codes are always retryable
	retryCfg := grit.DefaultConfig()
	retryCfg.Retryer = &grit.Retryer{
		MaxAttempts: 4,
		MinDelay:    200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		RetryOn:     []grit.FailureKind{grit.FailureTransport, grit.FailureTimeout},
	}
	resp, err = grit.Request(ctx, "http://localhost:9999/flaky?key=demo", retryCfg, nil)
	if err != nil {
		slog.Error("flaky request failed", "error", err)
		os.Exit(1)
	}
	attempts, _ := resp.Field("attempts")
	fmt.Printf("flaky endpoint: succeeded on server call %s\n", attempts)

	// 3. batch: three urls fanned out concurrently, results in input order
	urls := []string{
		"http://localhost:9999/status",
		"http://localhost:9999/jobs?id=batch",
		"http://localhost:9999/flaky?key=demo",
	}
	responses, err := grit.RequestMany(ctx, urls, nil, nil)
	if err != nil {
		slog.Error("batch request failed", "error", err)
		os.Exit(1)
	}
	for i, r := range responses {
		fmt.Printf("batch[%d]: %s code=%d\n", i, urls[i], r.StatusCode)
	}

	// 4. poll until the job reports done (takes ~2s on the mock server)
	result, err := grit.Poll(ctx, "http://localhost:9999/jobs?id=deploy", nil, grit.PollConfig[jobStatus]{
		Timeout:  10 * time.Second,
		Interval: 500 * time.Millisecond,
		SuccessCondition: func(j jobStatus) bool {
			return j.State == "done"
		},
	})
	if err != nil {
		slog.Error("poll failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("job %s finished with state %s\n", result.StructuredContent.ID, result.StructuredContent.State)

	// 5. the same settings expressed as a YAML profile
	pf, err := profile.Parse([]byte(demoProfiles))
	if err != nil {
		slog.Error("failed to parse profiles", "error", err)
		os.Exit(1)
	}
	cfg, err := pf.Build("demo")
	if err != nil {
		slog.Error("failed to build profile", "error", err)
		os.Exit(1)
	}
	resp, err = grit.Request(ctx, "http://localhost:9999/status", cfg, nil)
	if err != nil {
		slog.Error("profile request failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("profile request: code=%d\n", resp.StatusCode)
}

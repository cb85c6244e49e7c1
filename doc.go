// Package grit provides a resilient HTTP request orchestrator with rate
// limiting, retries, response evaluation and concurrent batch dispatch.
//
// grit is designed as a thin layer over net/http for calling JSON APIs:
// every call funnels through one pipeline that throttles, retries, evaluates
// the status code and decodes the body, so callers deal with a single
// [Response] type and a small set of typed errors instead of raw transport
// details.
//
// # Quick Start
//
// Issue a GET with the default settings:
//
//	resp, err := grit.Request(ctx, "https://api.example.com/items", nil, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.StatusCode, resp.JSONContent)
//
// # Configuration
//
// Requests are configured with a [RequestConfig] value. The zero value works;
// [DefaultConfig] fills in the defaults (GET, 5 minute timeout, rotating
// User-Agent, JSON and text download enabled):
//
//	cfg := grit.DefaultConfig()
//	cfg.Retryer = &grit.Retryer{
//	    MaxAttempts: 3,
//	    MinDelay:    500 * time.Millisecond,
//	    MaxDelay:    10 * time.Second,
//	    RetryOn:     []grit.FailureKind{grit.FailureTransport, grit.FailureTimeout},
//	}
//	cfg.Limiter, _ = grit.NewRateLimiter(5, time.Second, "example-api")
//
//	resp, err := grit.Request(ctx, url, cfg, grit.JSONPayload(body))
//
// Configs can also be loaded from YAML files with the profile subpackage.
//
// # Structured Responses
//
// [RequestStructured] decodes the JSON body into a caller-supplied type and
// can retry based on the decoded content:
//
//	type job struct {
//	    State string `json:"state"`
//	}
//
//	resp, err := grit.RequestStructured[job](ctx, url, cfg, nil,
//	    grit.RetryOnContent(func(j job) bool { return j.State == "stale" }),
//	)
//
// # Batches and Polling
//
// [RequestMany] dispatches one request per URL concurrently and returns
// responses in input order. [Poll] repeats a structured request until a
// condition holds or a deadline passes:
//
//	resp, err := grit.Poll(ctx, url, cfg, grit.PollConfig[job]{
//	    Timeout:          2 * time.Minute,
//	    Interval:         5 * time.Second,
//	    SuccessCondition: func(j job) bool { return j.State == "done" },
//	})
//
// # Errors
//
// Failures surface as typed errors that work with [errors.As]:
//
//   - [ResponseEvaluationError]: the status code fell outside the acceptable set
//   - [ContentCallbackError]: a structured retry predicate rejected the body
//   - [PollTimeoutError]: the poll deadline passed without success
//   - [InvalidArgumentError]: malformed input, reported before any request is sent
//
// # Architecture
//
// The public API sits in this package; supporting concerns live in
// subpackages:
//
//   - internal/transport: pooled HTTP clients, proxy and TLS setup, traced request execution
//   - profile: YAML request profiles that build [RequestConfig] values
//
// The internal packages are not part of the public API and may change
// without notice.
package grit

package grit

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/go-grit/grit/internal/transport"
)

// RequestMany fans urls out to concurrent [Request] pipelines and returns
// the responses in input order.
//
// payloads may be nil (no bodies) or must align one-to-one with urls; a
// length mismatch fails with [*InvalidArgumentError] before any network
// activity. Each element runs its own retry and rate-limit governance, so a
// shared cfg.Limiter paces the whole batch. One client is shared across the
// batch when cfg.Session is nil and released when the batch returns.
//
// The caller gets either every response or an error: the first pipeline
// failure to surface is returned, and in-flight siblings are cancelled
// through the shared context. Partial results are never returned.
func RequestMany(ctx context.Context, urls []string, cfg *RequestConfig, payloads []*Payload) ([]*Response, error) {
	if err := checkPayloadCount(urls, payloads); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger().With("batch_id", uuid.NewString())

	client, owned, err := buildClient(cfg)
	if err != nil {
		return nil, err
	}
	if owned {
		defer transport.Close(client)
	}

	logger.Debug("batch started", "count", len(urls), "method", cfg.method())
	results := make([]*Response, len(urls))
	err = dispatch(ctx, len(urls), func(ctx context.Context, i int) error {
		resp, err := executeWithRetry(ctx, client, urls[i], cfg, payloadAt(payloads, i), logger.With("url", urls[i]))
		if err != nil {
			return err
		}
		results[i] = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("batch finished", "count", len(urls))

	return results, nil
}

// RequestStructuredMany fans urls out to concurrent [RequestStructured]
// pipelines and returns the structured responses in input order.
//
// Options apply to every element; a [RetryOnContent] predicate therefore
// governs each pipeline independently. Dispatch semantics match
// [RequestMany]: all results or the first failure, siblings cancelled.
func RequestStructuredMany[T any](ctx context.Context, urls []string, cfg *RequestConfig, payloads []*Payload, opts ...StructuredOption[T]) ([]*StructuredResponse[T], error) {
	if err := checkPayloadCount(urls, payloads); err != nil {
		return nil, err
	}

	settings := &structuredSettings[T]{}
	for _, opt := range opts {
		if err := opt(settings); err != nil {
			return nil, err
		}
	}

	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.clone()
	cfg.DownloadJSONContent = true
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.logger().With("batch_id", uuid.NewString())

	client, owned, err := buildClient(cfg)
	if err != nil {
		return nil, err
	}
	if owned {
		defer transport.Close(client)
	}

	logger.Debug("batch started", "count", len(urls), "method", cfg.method(), "structured", true)
	results := make([]*StructuredResponse[T], len(urls))
	err = dispatch(ctx, len(urls), func(ctx context.Context, i int) error {
		resp, err := executeStructuredWithRetry(ctx, client, urls[i], cfg, payloadAt(payloads, i), settings, logger.With("url", urls[i]))
		if err != nil {
			return err
		}
		results[i] = resp
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("batch finished", "count", len(urls))

	return results, nil
}

// dispatch runs fn for every index concurrently and waits for completion.
//
// The first error is recorded once and cancels the context shared by the
// remaining goroutines; indexes that were not yet started observe the
// cancellation and return without doing work. Result ordering is the
// caller's concern (fn writes into index-aligned slots), so completion order
// never matters.
func dispatch(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if err := fn(ctx, i); err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
			}
		}(i)
	}

	wg.Wait()
	return firstErr
}

// checkPayloadCount enforces the urls/payloads alignment before any I/O.
func checkPayloadCount(urls []string, payloads []*Payload) error {
	if payloads != nil && len(payloads) != len(urls) {
		return &InvalidArgumentError{
			Reason: fmt.Sprintf("number of urls (%d) and payloads (%d) must be the same", len(urls), len(payloads)),
		}
	}
	return nil
}

// payloadAt returns the payload aligned with index i, or nil when the batch
// carries no payloads.
func payloadAt(payloads []*Payload, i int) *Payload {
	if payloads == nil {
		return nil
	}
	return payloads[i]
}

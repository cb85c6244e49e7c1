package grit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/go-grit/grit/internal/transport"
)

// structuredSettings holds mutable state during structured call construction.
type structuredSettings[T any] struct {
	retryOnContent func(T) bool
}

// StructuredOption configures a structured request.
//
// StructuredOption implements the functional options pattern, allowing
// optional per-call behavior to be passed to [RequestStructured],
// [RequestStructuredMany], and [Poll] in a type-safe, extensible way.
// Options return an error if validation fails.
type StructuredOption[T any] func(*structuredSettings[T]) error

// RetryOnContent registers a predicate consulted after structured decoding.
//
// When the predicate returns true the attempt fails with a
// [*ContentCallbackError], which is always retryable: this lets callers
// re-request on a well-formed but semantically incomplete response, such as
// a job status body still reporting "pending", even though the HTTP status
// was acceptable.
//
// The predicate runs inside a panic recovery boundary; a panicking predicate
// fails the call with an error carrying a correlation id rather than
// crashing the program, and is not retried.
//
// Returns an error if the predicate is nil.
func RetryOnContent[T any](predicate func(T) bool) StructuredOption[T] {
	return func(s *structuredSettings[T]) error {
		if predicate == nil {
			return errors.New("retry predicate cannot be nil")
		}
		s.retryOnContent = predicate
		return nil
	}
}

// RequestStructured performs a governed HTTP call and deserializes the JSON
// content into T, carrying both the raw [Response] and the decoded value.
//
// JSON download is forced on for this call regardless of
// cfg.DownloadJSONContent; the caller's config value is not mutated. The
// decoded value is built from the normalized JSON content, so a non-mapping
// body decodes into a T with a "content" field.
//
// cfg may be nil, meaning [DefaultConfig]. Everything else behaves like
// [Request], including retry governance: a [RetryOnContent] rejection
// consumes a retry attempt exactly like an unacceptable status.
func RequestStructured[T any](ctx context.Context, url string, cfg *RequestConfig, payload *Payload, opts ...StructuredOption[T]) (*StructuredResponse[T], error) {
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

	logger := cfg.logger().With("request_id", uuid.NewString(), "url", url)

	client, owned, err := buildClient(cfg)
	if err != nil {
		return nil, err
	}
	if owned {
		defer transport.Close(client)
	}

	logger.Debug("request started", "method", cfg.method(), "structured", true)
	resp, err := executeStructuredWithRetry(ctx, client, url, cfg, payload, settings, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("request finished", "status", resp.StatusCode)

	return resp, nil
}

// executeStructuredWithRetry runs the structured pipeline under the retry
// driver. Decoding and the content predicate run inside the retried
// function, so a [RetryOnContent] rejection re-enters the full pipeline.
func executeStructuredWithRetry[T any](ctx context.Context, client *http.Client, url string, cfg *RequestConfig, payload *Payload, settings *structuredSettings[T], logger *slog.Logger) (*StructuredResponse[T], error) {
	var structured *StructuredResponse[T]
	err := cfg.retryer().do(ctx, logger, func() error {
		resp, err := attempt(ctx, client, url, cfg, payload, logger)
		if err != nil {
			return err
		}

		content, err := decodeStructured[T](resp.JSONContent)
		if err != nil {
			return err
		}

		if settings.retryOnContent != nil {
			rejected, err := invokeConditionSafe(settings.retryOnContent, content, logger)
			if err != nil {
				return err
			}
			if rejected {
				return &ContentCallbackError{}
			}
		}

		structured = &StructuredResponse[T]{Response: *resp, StructuredContent: content}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return structured, nil
}

// decodeStructured builds a T from the normalized JSON content.
func decodeStructured[T any](jsonContent map[string]any) (T, error) {
	var out T
	encoded, err := json.Marshal(jsonContent)
	if err != nil {
		return out, fmt.Errorf("encode json content: %w", err)
	}
	if err := json.Unmarshal(encoded, &out); err != nil {
		return out, fmt.Errorf("decode structured content: %w", err)
	}
	return out, nil
}

// invokeConditionSafe calls a caller-supplied predicate with panic recovery.
// If the predicate panics, the full stack trace is logged with a correlation
// ID and a user-facing error carrying the same ID is returned.
func invokeConditionSafe[T any](condition func(T) bool, value T, logger *slog.Logger) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			logger.Error("condition panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			result = false
			err = fmt.Errorf("condition panic (correlation_id: %s)", correlationID)
		}
	}()
	return condition(value), nil
}

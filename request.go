package grit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/go-grit/grit/internal/transport"
)

// Request performs one governed HTTP call: rate-limit acquisition, transport
// call, response evaluation, and optional body materialization, wrapped by
// the configured retry schedule.
//
// cfg may be nil, meaning [DefaultConfig]. payload may be nil for body-less
// calls. When cfg.Session is nil a client is created for this call and
// released on every exit path; a supplied Session is shared read-only and
// never torn down.
//
// The error taxonomy is described on the error types: an unacceptable status
// yields [*ResponseEvaluationError], transport conditions surface as the
// underlying url/net errors, and after the retry budget is exhausted the
// last failure is returned unchanged.
//
// Cancellation of ctx aborts the call at any suspension point (limiter wait,
// transport I/O, backoff sleep) and is never retried.
func Request(ctx context.Context, url string, cfg *RequestConfig, payload *Payload) (*Response, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
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

	logger.Debug("request started", "method", cfg.method())
	resp, err := executeWithRetry(ctx, client, url, cfg, payload, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("request finished", "status", resp.StatusCode)

	return resp, nil
}

// executeWithRetry runs the single-attempt pipeline under the retry driver.
func executeWithRetry(ctx context.Context, client *http.Client, url string, cfg *RequestConfig, payload *Payload, logger *slog.Logger) (*Response, error) {
	var resp *Response
	err := cfg.retryer().do(ctx, logger, func() error {
		r, err := attempt(ctx, client, url, cfg, payload, logger)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// attempt is the single pass of the pipeline: acquire a rate-limit permit,
// issue the transport call, evaluate the status, and materialize the
// requested body forms.
func attempt(ctx context.Context, client *http.Client, url string, cfg *RequestConfig, payload *Payload, logger *slog.Logger) (*Response, error) {
	if cfg.Limiter != nil {
		waitStart := time.Now()
		if err := cfg.Limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		if waited := time.Since(waitStart); waited >= maxLimiterWait {
			logger.Warn("rate limit wait budget exhausted, proceeding",
				"identity", cfg.Limiter.Identity(),
				"waited", waited.String(),
			)
		}
	}

	headers, err := assembleHeaders(cfg, payload)
	if err != nil {
		return nil, err
	}
	body, err := payload.body()
	if err != nil {
		return nil, err
	}

	result, err := transport.Do(ctx, client, transport.Request{
		URL:      url,
		Method:   cfg.method(),
		Headers:  headers,
		Params:   cfg.Params,
		Body:     body,
		Timeout:  cfg.Timeout,
		ReadBody: cfg.DownloadTextContent || cfg.DownloadJSONContent,
	})
	if err != nil {
		return nil, err
	}

	textContent := ""
	if cfg.DownloadTextContent {
		textContent = string(result.Body)
	}

	if err := EvaluateResponse(result.StatusCode, cfg.AcceptableCodes, textContent); err != nil {
		return nil, err
	}

	jsonContent := map[string]any{}
	if cfg.DownloadJSONContent {
		jsonContent, err = normalizeJSONContent(result.Body)
		if err != nil {
			return nil, err
		}
	}

	return &Response{
		FinalURL:    result.FinalURL,
		StatusCode:  result.StatusCode,
		Headers:     result.Header,
		JSONContent: jsonContent,
		TextContent: textContent,
		raw:         result.Body,
	}, nil
}

// assembleHeaders builds the request headers with the documented precedence:
// caller-supplied headers first, then the generated User-Agent, then the
// bearer-token Authorization header, then the payload's content type. Later
// steps win on key collision.
func assembleHeaders(cfg *RequestConfig, payload *Payload) (map[string]string, error) {
	headers := make(map[string]string, len(cfg.Headers)+3)
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	if cfg.UseRandomUserAgent {
		headers["User-Agent"] = PickUserAgent(cfg.UserAgents)
	}

	switch {
	case cfg.TokenSource != nil:
		token, err := cfg.TokenSource.Token()
		if err != nil {
			return nil, fmt.Errorf("fetch bearer token: %w", err)
		}
		headers["Authorization"] = "Bearer " + token.AccessToken
	case cfg.BearerToken != "":
		headers["Authorization"] = "Bearer " + cfg.BearerToken
	}

	if ct := payload.ContentType(); ct != "" {
		headers["Content-Type"] = ct
	}

	return headers, nil
}

// buildClient resolves the *http.Client for a call. The boolean reports
// whether the library owns the client and must release it on exit.
func buildClient(cfg *RequestConfig) (*http.Client, bool, error) {
	if cfg.Session != nil {
		return cfg.Session, false, nil
	}

	var opts transport.Options
	if cfg.Proxy != nil {
		tlsConfig, err := BuildTLSConfig(cfg.Proxy.ExtraCertificate)
		if err != nil {
			return nil, false, err
		}
		opts.Proxy = &transport.Proxy{
			URL:     cfg.Proxy.Host,
			Headers: copyMap(cfg.Proxy.Headers),
		}
		opts.TLS = tlsConfig
	}

	client, err := transport.NewClient(opts)
	if err != nil {
		return nil, false, err
	}
	return client, true, nil
}

// normalizeJSONContent decodes body as JSON and guarantees a mapping:
// non-mapping JSON (arrays, scalars, null) is wrapped as {"content": value}.
func normalizeJSONContent(body []byte) (map[string]any, error) {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("decode json content: %w", err)
	}
	if mapping, ok := value.(map[string]any); ok {
		return mapping, nil
	}
	return map[string]any{"content": value}, nil
}

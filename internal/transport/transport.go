package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Request holds the fully assembled inputs for a single transport attempt.
//
// Header precedence, payload encoding, and authentication decisions all
// happen before a Request is built; this layer sends exactly what it is
// given.
type Request struct {
	// URL is the target URL.
	URL string

	// Method is the HTTP method. Empty defaults to GET.
	Method string

	// Headers are applied to the request verbatim.
	Headers map[string]string

	// Params are query parameters merged with any already on URL.
	Params url.Values

	// Body is the request body. nil sends no body.
	Body []byte

	// Timeout bounds this attempt via context. Zero means no attempt
	// timeout beyond the caller's context.
	Timeout time.Duration

	// ReadBody materializes the response body into [Result.Body]. When
	// false the body is drained and discarded so the connection can be
	// reused.
	ReadBody bool
}

// Result holds the transport-level outcome of one attempt.
type Result struct {
	// FinalURL is the request URL after any redirects.
	FinalURL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Header are the response headers.
	Header http.Header

	// Body is the materialized response body, nil unless
	// [Request.ReadBody] was set.
	Body []byte
}

// Do executes one attempt and returns its [Result].
//
// The attempt is bounded by req.Timeout (when positive) layered on top of
// ctx, so a caller-level cancellation always aborts the call. Each attempt
// is wrapped in a client span recording method, URL, and outcome.
//
// Do performs no retries and no status evaluation: any 2xx/4xx/5xx response
// is a successful Result, and the returned error is always a transport-level
// failure.
func Do(ctx context.Context, client *http.Client, req Request) (*Result, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := mergeParams(req.URL, req.Params)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	ctx, span := startSpan(ctx, method, target)
	httpReq = httpReq.WithContext(ctx)

	resp, err := client.Do(httpReq)
	if err != nil {
		endSpan(span, 0, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var respBody []byte
	if req.ReadBody {
		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			endSpan(span, resp.StatusCode, err)
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
	} else {
		// drain so the connection can be reused
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			endSpan(span, resp.StatusCode, err)
			return nil, fmt.Errorf("failed to drain response body: %w", err)
		}
	}

	endSpan(span, resp.StatusCode, nil)

	return &Result{
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// mergeParams appends params to any query already present on rawURL.
func mergeParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	query := parsed.Query()
	for key, values := range params {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

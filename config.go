package grit

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const defaultTimeout = 300 * time.Second

// ProxyConfig points requests through a forward proxy.
//
// ProxyConfig is a value object supplied once per request configuration.
// It only takes effect when the library owns the transport client; a
// caller-supplied [RequestConfig.Session] is used exactly as given.
type ProxyConfig struct {
	// Host is the proxy URL, for example "http://proxy.internal:3128".
	Host string

	// Headers are sent with the CONNECT request to the proxy.
	Headers map[string]string

	// ExtraCertificate is an optional PEM certificate appended to the
	// system trust store, for proxies that terminate TLS with a private CA.
	ExtraCertificate string
}

// RequestConfig aggregates everything needed for one logical call family.
//
// The zero value is usable: GET, no body downloads, no limiter, a single
// attempt, and no per-call timeout. [DefaultConfig] returns the recommended
// starting point instead: both downloads on, random User-Agent, a 10-per-
// second limiter, a single-attempt retryer, and a 300 second timeout.
//
// RequestConfig is treated as read-only by every operation; reusing one
// value across concurrent calls is safe as long as the caller does not
// mutate it mid-flight. The [RateLimiter] inside is the only field with
// internal state, and sharing it is exactly how calls share a limiting
// domain.
type RequestConfig struct {
	// Method is the HTTP method. Empty means GET.
	Method string

	// DownloadJSONContent materializes Response.JSONContent from the body.
	// Structured requests force this on for their own call.
	DownloadJSONContent bool

	// DownloadTextContent materializes Response.TextContent from the body.
	// Evaluation errors carry this text; when false they carry "".
	DownloadTextContent bool

	// Proxy routes the call through a forward proxy. Ignored when Session
	// is set.
	Proxy *ProxyConfig

	// Limiter bounds call frequency. nil admits everything.
	Limiter *RateLimiter

	// Retryer drives re-attempts. nil behaves like a single attempt.
	Retryer *Retryer

	// Timeout bounds each individual HTTP attempt, not the whole retried
	// call. Zero means no per-attempt timeout.
	Timeout time.Duration

	// UseRandomUserAgent sets a User-Agent header picked from UserAgents
	// (or the built-in list) on every attempt.
	UseRandomUserAgent bool

	// UserAgents is the candidate pool for random User-Agent selection.
	// nil means [DefaultUserAgents].
	UserAgents []string

	// BearerToken, when non-empty, contributes an Authorization header.
	BearerToken string

	// TokenSource supplies OAuth2 bearer tokens, fetched fresh on every
	// attempt. Takes precedence over BearerToken.
	TokenSource oauth2.TokenSource

	// Headers are caller-supplied headers, applied first in the assembly
	// order and therefore overridable by the generated ones.
	Headers map[string]string

	// Params are query parameters merged into the URL.
	Params url.Values

	// Session is an externally-owned HTTP client. When set, the library
	// neither configures nor closes it, and Proxy is ignored. When nil, a
	// client is created for the call (or batch) and released on exit.
	Session *http.Client

	// AcceptableCodes is the status-code set treated as success.
	// nil means {200}. Set-but-empty is an invalid argument.
	AcceptableCodes []int

	// Logger receives request lifecycle logs. nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a fresh RequestConfig with the library defaults.
//
// Each call returns a new value with its own rate limiter bucket; callers
// that want several call families to share one limiting domain must share
// one [RateLimiter] instance explicitly.
func DefaultConfig() *RequestConfig {
	return &RequestConfig{
		Method:              http.MethodGet,
		DownloadJSONContent: true,
		DownloadTextContent: true,
		Limiter:             DefaultRateLimiter(),
		Retryer:             DefaultRetryer(),
		Timeout:             defaultTimeout,
		UseRandomUserAgent:  true,
	}
}

// method returns the effective HTTP method.
func (c *RequestConfig) method() string {
	if c.Method == "" {
		return http.MethodGet
	}
	return c.Method
}

// logger returns the effective logger.
func (c *RequestConfig) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// retryer returns the effective retry driver.
func (c *RequestConfig) retryer() *Retryer {
	if c.Retryer == nil {
		return &Retryer{MaxAttempts: 1}
	}
	return c.Retryer
}

// validate rejects configurations that must fail before any I/O.
func (c *RequestConfig) validate() error {
	if c.AcceptableCodes != nil && len(c.AcceptableCodes) == 0 {
		return &InvalidArgumentError{Reason: "acceptable codes set but empty"}
	}
	return nil
}

// clone returns a copy safe to adjust for a single call. Maps and slices are
// copied; the limiter, retryer, token source, and session are shared (the
// limiter bucket is how calls share a limiting domain).
func (c *RequestConfig) clone() *RequestConfig {
	cp := *c
	cp.Headers = copyMap(c.Headers)
	cp.Params = copyValues(c.Params)
	cp.UserAgents = copyStrings(c.UserAgents)
	cp.AcceptableCodes = copyInts(c.AcceptableCodes)
	if c.Proxy != nil {
		proxy := *c.Proxy
		proxy.Headers = copyMap(c.Proxy.Headers)
		cp.Proxy = &proxy
	}
	return &cp
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

// copyValues returns a copy of query parameters, one level deep.
func copyValues(v url.Values) url.Values {
	if v == nil {
		return nil
	}
	cp := make(url.Values, len(v))
	for k, vals := range v {
		cp[k] = copyStrings(vals)
	}
	return cp
}

// copyStrings returns a copy of the slice, or nil if input is nil.
func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// copyInts returns a copy of the slice, or nil if input is nil.
func copyInts(s []int) []int {
	if s == nil {
		return nil
	}
	return append([]int(nil), s...)
}

// copyBytes returns a copy of the byte slice, or nil if input is nil.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

package transport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// connection pooling limits to prevent resource exhaustion when fanning out
// large batches
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Proxy is the transport-level proxy description, decoupled from the root
// package's ProxyConfig to avoid circular dependencies.
type Proxy struct {
	// URL is the proxy address, for example "http://proxy.internal:3128".
	URL string

	// Headers are sent with the CONNECT request to the proxy.
	Headers map[string]string
}

// Options configures client construction in [NewClient].
type Options struct {
	// Proxy routes all requests through a forward proxy when non-nil.
	Proxy *Proxy

	// TLS is the client TLS configuration, typically the system pool plus
	// a proxy's extra certificate. nil leaves the default verification.
	TLS *tls.Config
}

// NewClient creates an *http.Client for library-owned call lifecycles.
//
// The client has no global timeout; attempts are bounded per-request via
// context in [Do]. Connection pooling limits keep large batches from
// exhausting sockets:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
//
// Returns an error if the proxy URL does not parse.
func NewClient(opts Options) (*http.Client, error) {
	t := &http.Transport{
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		MaxConnsPerHost:     defaultMaxConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
		TLSClientConfig:     opts.TLS,
	}

	if opts.Proxy != nil {
		proxyURL, err := url.Parse(opts.Proxy.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		t.Proxy = http.ProxyURL(proxyURL)
		if len(opts.Proxy.Headers) > 0 {
			header := make(http.Header, len(opts.Proxy.Headers))
			for k, v := range opts.Proxy.Headers {
				header.Set(k, v)
			}
			t.ProxyConnectHeader = header
		}
	}

	return &http.Client{Transport: t}, nil
}

// Close releases idle connections held by a library-owned client.
//
// Safe to call multiple times and on clients not built by [NewClient];
// callers remain able to use the client afterwards, new connections are
// established as needed.
func Close(c *http.Client) {
	if c == nil {
		return
	}
	if t, ok := c.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

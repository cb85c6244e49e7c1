package profile

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/go-grit/grit"
)

// Build converts the named profile into a [grit.RequestConfig].
//
// Settings absent from the profile keep the defaults from
// [grit.DefaultConfig]. Returns an error if no profile with that name exists.
func (f *File) Build(name string) (*grit.RequestConfig, error) {
	p, ok := f.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile %q not found", name)
	}
	return buildConfig(name, p)
}

// buildConfig converts a single Profile into a grit.RequestConfig.
func buildConfig(name string, p Profile) (*grit.RequestConfig, error) {
	cfg := grit.DefaultConfig()

	if p.Method != "" {
		cfg.Method = p.Method
	}

	if p.Timeout != 0 {
		cfg.Timeout = p.Timeout.Duration()
	}

	if p.DownloadJSONContent != nil {
		cfg.DownloadJSONContent = *p.DownloadJSONContent
	}
	if p.DownloadTextContent != nil {
		cfg.DownloadTextContent = *p.DownloadTextContent
	}
	if p.UseRandomUserAgent != nil {
		cfg.UseRandomUserAgent = *p.UseRandomUserAgent
	}

	if len(p.Headers) > 0 {
		cfg.Headers = copyStringMap(p.Headers)
	}

	if len(p.Params) > 0 {
		params := make(url.Values, len(p.Params))
		for k, v := range p.Params {
			params.Set(k, v)
		}
		cfg.Params = params
	}

	if len(p.AcceptableCodes) > 0 {
		cfg.AcceptableCodes = append([]int(nil), p.AcceptableCodes...)
	}

	if len(p.UserAgents) > 0 {
		cfg.UserAgents = append([]string(nil), p.UserAgents...)
	}

	if p.BearerToken != "" {
		cfg.BearerToken = p.BearerToken
	}

	if p.RateLimit != nil {
		limiter, err := buildRateLimiter(name, *p.RateLimit)
		if err != nil {
			return nil, fmt.Errorf("profile %q: rate_limit: %w", name, err)
		}
		cfg.Limiter = limiter
	}

	if p.Retry != nil {
		retryer, err := buildRetryer(*p.Retry)
		if err != nil {
			return nil, fmt.Errorf("profile %q: retry: %w", name, err)
		}
		cfg.Retryer = retryer
	}

	if p.Proxy != nil {
		cfg.Proxy = &grit.ProxyConfig{
			Host:             p.Proxy.Host,
			Headers:          copyStringMap(p.Proxy.Headers),
			ExtraCertificate: p.Proxy.ExtraCertificate,
		}
	}

	if p.OAuth2 != nil {
		cfg.TokenSource = buildTokenSource(*p.OAuth2)
	}

	return cfg, nil
}

// buildRateLimiter converts a RateLimitProfile into a grit.RateLimiter.
//
// The window defaults to 1s and the identity defaults to the profile name.
func buildRateLimiter(name string, rl RateLimitProfile) (*grit.RateLimiter, error) {
	window := rl.Window.Duration()
	if window == 0 {
		window = time.Second
	}

	identity := rl.Identity
	if identity == "" {
		identity = name
	}

	return grit.NewRateLimiter(rl.Rate, window, identity)
}

// buildRetryer converts a RetryProfile into a grit.Retryer.
//
// An empty retry_on list keeps the default retryable kinds.
func buildRetryer(rp RetryProfile) (*grit.Retryer, error) {
	retryer := grit.DefaultRetryer()
	retryer.MaxAttempts = rp.Attempts
	retryer.MinDelay = rp.MinDelay.Duration()
	if rp.MaxDelay != 0 {
		retryer.MaxDelay = rp.MaxDelay.Duration()
	}

	if len(rp.RetryOn) > 0 {
		kinds := make([]grit.FailureKind, 0, len(rp.RetryOn))
		for _, s := range rp.RetryOn {
			kind, err := grit.ParseFailureKind(s)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, kind)
		}
		retryer.RetryOn = kinds
	}

	return retryer, nil
}

// buildTokenSource creates a client credentials token source.
//
// The token source fetches lazily and caches tokens until they expire, so a
// single config can be reused across many requests without re-authenticating.
func buildTokenSource(op OAuth2Profile) oauth2.TokenSource {
	cc := clientcredentials.Config{
		ClientID:     op.ClientID,
		ClientSecret: op.ClientSecret,
		TokenURL:     op.TokenURL,
		Scopes:       op.Scopes,
	}
	return cc.TokenSource(context.Background())
}

// copyStringMap returns a copy of m, or nil if m is empty.
func copyStringMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

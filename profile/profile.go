// Package profile provides YAML request profile parsing for grit.
//
// Profiles let applications keep per-service request settings in a
// configuration file instead of assembling [grit.RequestConfig] values in
// code. A single file can hold any number of named profiles.
//
// Example profile file:
//
//	profiles:
//	  github:
//	    timeout: 30s
//	    headers:
//	      Accept: application/vnd.github+json
//	      Authorization: Bearer ${GITHUB_TOKEN}
//	    acceptable_codes: [200, 304]
//	    rate_limit:
//	      rate: 5
//	      window: 1s
//	    retry:
//	      attempts: 3
//	      min_delay: 500ms
//	      max_delay: 10s
//	      retry_on: [transport, timeout]
//
//	  payments:
//	    method: POST
//	    oauth2:
//	      token_url: https://auth.example.com/oauth/token
//	      client_id: ${PAYMENTS_CLIENT_ID}
//	      client_secret: ${PAYMENTS_CLIENT_SECRET}
package profile

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/go-grit/grit"
)

// File is the root structure of a profile file.
//
// It maps directly to the YAML file structure. Use [Load] or [Parse] to
// create a File from YAML, then [File.Build] to turn a named profile into a
// [grit.RequestConfig].
type File struct {
	// Profiles maps profile names to their request settings.
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile defines the request settings for one named service.
//
// Settings left unset keep the defaults from [grit.DefaultConfig].
type Profile struct {
	// Method is the HTTP method. Defaults to GET.
	Method string `yaml:"method"`

	// Timeout is the total per-attempt deadline.
	// Accepts duration strings like "30s", "1m", "500ms".
	Timeout Duration `yaml:"timeout"`

	// Headers are sent with every request.
	// Values support environment variable substitution: ${VAR} or ${VAR:-default}
	Headers map[string]string `yaml:"headers"`

	// Params are query string parameters appended to every request URL.
	// Values support environment variable substitution.
	Params map[string]string `yaml:"params"`

	// AcceptableCodes lists the HTTP status codes treated as success.
	// Defaults to [200].
	AcceptableCodes []int `yaml:"acceptable_codes"`

	// DownloadJSONContent controls JSON decoding of response bodies.
	// Defaults to true.
	DownloadJSONContent *bool `yaml:"download_json_content"`

	// DownloadTextContent controls text loading of response bodies.
	// Defaults to true.
	DownloadTextContent *bool `yaml:"download_text_content"`

	// UseRandomUserAgent controls User-Agent rotation. Defaults to true.
	UseRandomUserAgent *bool `yaml:"use_random_user_agent"`

	// UserAgents overrides the built-in User-Agent pool.
	UserAgents []string `yaml:"user_agents"`

	// BearerToken is sent as an Authorization bearer header.
	// Supports environment variable substitution.
	BearerToken string `yaml:"bearer_token"`

	// RateLimit throttles outgoing requests.
	RateLimit *RateLimitProfile `yaml:"rate_limit"`

	// Retry re-runs failed requests with exponential backoff.
	Retry *RetryProfile `yaml:"retry"`

	// Proxy routes requests through an HTTP proxy.
	Proxy *ProxyProfile `yaml:"proxy"`

	// OAuth2 fetches bearer tokens via the client credentials flow.
	// When set it takes precedence over BearerToken.
	OAuth2 *OAuth2Profile `yaml:"oauth2"`
}

// RateLimitProfile configures request throttling.
type RateLimitProfile struct {
	// Rate is the number of requests allowed per window.
	Rate int `yaml:"rate"`

	// Window is the time window the rate applies to. Defaults to 1s.
	Window Duration `yaml:"window"`

	// Identity names the limiter in logs. Defaults to the profile name.
	Identity string `yaml:"identity"`
}

// RetryProfile configures retry behaviour.
type RetryProfile struct {
	// Attempts is the total number of tries, including the first.
	Attempts int `yaml:"attempts"`

	// MinDelay is the backoff delay before the first retry.
	MinDelay Duration `yaml:"min_delay"`

	// MaxDelay caps the exponential backoff. Defaults to 10s.
	MaxDelay Duration `yaml:"max_delay"`

	// RetryOn lists the failure kinds worth retrying, for example
	// "transport" or "timeout". Defaults to both.
	RetryOn []string `yaml:"retry_on"`
}

// ProxyProfile configures an HTTP proxy.
type ProxyProfile struct {
	// Host is the proxy URL. Supports environment variable substitution.
	Host string `yaml:"host"`

	// Headers are sent to the proxy on CONNECT.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`

	// ExtraCertificate is a PEM certificate appended to the system pool,
	// typically the proxy's own CA. Use a YAML block scalar for the value.
	ExtraCertificate string `yaml:"extra_certificate"`
}

// OAuth2Profile configures the OAuth2 client credentials flow.
type OAuth2Profile struct {
	// TokenURL is the token endpoint.
	// Supports environment variable substitution.
	TokenURL string `yaml:"token_url"`

	// ClientID identifies the client.
	// Supports environment variable substitution.
	ClientID string `yaml:"client_id"`

	// ClientSecret authenticates the client.
	// Supports environment variable substitution.
	ClientSecret string `yaml:"client_secret"`

	// Scopes lists the access scopes to request.
	Scopes []string `yaml:"scopes"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// validMethods lists the HTTP methods a profile may name.
var validMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML profile file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML profile data.
//
// Environment variables are expanded in header, parameter, token, proxy and
// OAuth2 values. Every profile is validated before Parse returns.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := f.expandAndValidate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Names returns the profile names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expandAndValidate expands environment variables and validates every profile.
func (f *File) expandAndValidate() error {
	if len(f.Profiles) == 0 {
		return errors.New("at least one profile must be defined")
	}

	for _, name := range f.Names() {
		if name == "" {
			return errors.New("profile name cannot be empty")
		}

		p := f.Profiles[name]
		if err := p.expandAndValidate(name); err != nil {
			return err
		}
		f.Profiles[name] = p
	}

	return nil
}

// expandAndValidate expands environment variables in a single profile and
// checks every setting that can be checked without building anything.
func (p *Profile) expandAndValidate(name string) error {
	if p.Method != "" && !validMethods[p.Method] {
		return fmt.Errorf("profile %q: unknown method %q", name, p.Method)
	}

	if p.Timeout.Duration() < 0 {
		return fmt.Errorf("profile %q: timeout cannot be negative, got %s", name, p.Timeout.Duration())
	}

	for k, v := range p.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("profile %q: headers[%s]: %w", name, k, err)
		}
		p.Headers[k] = expanded
	}

	for k, v := range p.Params {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("profile %q: params[%s]: %w", name, k, err)
		}
		p.Params[k] = expanded
	}

	for i, code := range p.AcceptableCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("profile %q: acceptable_codes[%d]: %d is not an HTTP status code", name, i, code)
		}
	}

	expanded, err := expandEnvVars(p.BearerToken)
	if err != nil {
		return fmt.Errorf("profile %q: bearer_token: %w", name, err)
	}
	p.BearerToken = expanded

	if p.RateLimit != nil {
		if p.RateLimit.Rate <= 0 {
			return fmt.Errorf("profile %q: rate_limit: rate must be positive, got %d", name, p.RateLimit.Rate)
		}
		if p.RateLimit.Window.Duration() < 0 {
			return fmt.Errorf("profile %q: rate_limit: window cannot be negative, got %s",
				name, p.RateLimit.Window.Duration())
		}
	}

	if p.Retry != nil {
		if p.Retry.Attempts < 1 {
			return fmt.Errorf("profile %q: retry: attempts must be at least 1, got %d", name, p.Retry.Attempts)
		}
		if p.Retry.MinDelay.Duration() < 0 {
			return fmt.Errorf("profile %q: retry: min_delay cannot be negative, got %s",
				name, p.Retry.MinDelay.Duration())
		}
		if p.Retry.MaxDelay.Duration() < 0 {
			return fmt.Errorf("profile %q: retry: max_delay cannot be negative, got %s",
				name, p.Retry.MaxDelay.Duration())
		}
		for _, kind := range p.Retry.RetryOn {
			if _, err := grit.ParseFailureKind(kind); err != nil {
				return fmt.Errorf("profile %q: retry: retry_on: %w", name, err)
			}
		}
	}

	if p.Proxy != nil {
		expanded, err := expandEnvVars(p.Proxy.Host)
		if err != nil {
			return fmt.Errorf("profile %q: proxy: host: %w", name, err)
		}
		p.Proxy.Host = expanded

		if p.Proxy.Host == "" {
			return fmt.Errorf("profile %q: proxy: host is required", name)
		}
		parsed, err := url.Parse(p.Proxy.Host)
		if err != nil {
			return fmt.Errorf("profile %q: proxy: invalid host: %w", name, err)
		}
		if parsed.Scheme == "" {
			return fmt.Errorf("profile %q: proxy: host must have a scheme (http:// or https://)", name)
		}

		for k, v := range p.Proxy.Headers {
			expanded, err := expandEnvVars(v)
			if err != nil {
				return fmt.Errorf("profile %q: proxy: headers[%s]: %w", name, k, err)
			}
			p.Proxy.Headers[k] = expanded
		}
	}

	if p.OAuth2 != nil {
		if err := p.OAuth2.expandAndValidate(name); err != nil {
			return err
		}
	}

	return nil
}

// expandAndValidate expands environment variables in the OAuth2 block and
// checks that the client credentials flow is fully specified.
func (o *OAuth2Profile) expandAndValidate(name string) error {
	expanded, err := expandEnvVars(o.TokenURL)
	if err != nil {
		return fmt.Errorf("profile %q: oauth2: token_url: %w", name, err)
	}
	o.TokenURL = expanded

	if o.TokenURL == "" {
		return fmt.Errorf("profile %q: oauth2: token_url is required", name)
	}

	expanded, err = expandEnvVars(o.ClientID)
	if err != nil {
		return fmt.Errorf("profile %q: oauth2: client_id: %w", name, err)
	}
	o.ClientID = expanded

	if o.ClientID == "" {
		return fmt.Errorf("profile %q: oauth2: client_id is required", name)
	}

	expanded, err = expandEnvVars(o.ClientSecret)
	if err != nil {
		return fmt.Errorf("profile %q: oauth2: client_secret: %w", name, err)
	}
	o.ClientSecret = expanded

	if o.ClientSecret == "" {
		return fmt.Errorf("profile %q: oauth2: client_secret is required", name)
	}

	return nil
}

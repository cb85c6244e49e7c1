package grit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// BuildTLSConfig creates a TLS configuration from the system certificate pool
// with an optional extra certificate appended.
//
// Some proxies present certificates outside the system trust store; passing
// their PEM here lets the transport verify them without disabling
// verification globally. An empty extraCertificatePEM returns a configuration
// backed by the untouched system pool.
//
// Returns an error if the system pool cannot be loaded or the extra
// certificate is not parseable PEM.
func BuildTLSConfig(extraCertificatePEM string) (*tls.Config, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("load system certificate pool: %w", err)
	}

	if extraCertificatePEM != "" {
		if !pool.AppendCertsFromPEM([]byte(extraCertificatePEM)) {
			return nil, errors.New("extra certificate is not valid PEM")
		}
	}

	return &tls.Config{RootCAs: pool}, nil
}

// IsHostReachable reports whether an address record resolves for host.
//
// Returns false with a nil error when resolution answers "no such host".
// Any other resolver failure (for example a timeout reaching the resolver)
// is returned as an error so callers can tell "the name does not exist" from
// "I could not ask".
func IsHostReachable(ctx context.Context, host string) (bool, error) {
	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return false, nil
		}
		return false, err
	}
	return len(addrs) > 0, nil
}

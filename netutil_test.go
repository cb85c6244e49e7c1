package grit

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"strings"
	"testing"
	"time"
)

// testCertPEM generates a throwaway self-signed CA certificate in PEM form.
func testCertPEM(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "grit test CA"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	var buf bytes.Buffer
	if err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
		t.Fatalf("encode certificate: %v", err)
	}
	return buf.String()
}

func TestBuildTLSConfig_NoExtraCertificate(t *testing.T) {
	cfg, err := BuildTLSConfig("")
	if err != nil {
		t.Fatalf("BuildTLSConfig() error = %v", err)
	}
	if cfg.RootCAs == nil {
		t.Error("RootCAs = nil, want the system pool")
	}
}

func TestBuildTLSConfig_WithExtraCertificate(t *testing.T) {
	cfg, err := BuildTLSConfig(testCertPEM(t))
	if err != nil {
		t.Fatalf("BuildTLSConfig() error = %v", err)
	}
	if cfg.RootCAs == nil {
		t.Error("RootCAs = nil, want the system pool plus the extra certificate")
	}
}

func TestBuildTLSConfig_InvalidPEM(t *testing.T) {
	_, err := BuildTLSConfig("this is not a certificate")
	if err == nil {
		t.Fatal("BuildTLSConfig() expected error for invalid PEM, got nil")
	}
	if !strings.Contains(err.Error(), "not valid PEM") {
		t.Errorf("error = %v, want a PEM parse failure", err)
	}
}

func TestIsHostReachable_Localhost(t *testing.T) {
	reachable, err := IsHostReachable(context.Background(), "localhost")
	if err != nil {
		t.Fatalf("IsHostReachable() error = %v", err)
	}
	if !reachable {
		t.Error("IsHostReachable(localhost) = false, want true")
	}
}

// TestIsHostReachable_NoSuchHost verifies "the name does not exist" comes
// back as a clean false rather than an error. The empty name resolves to
// "no such host" without consulting any resolver.
func TestIsHostReachable_NoSuchHost(t *testing.T) {
	reachable, err := IsHostReachable(context.Background(), "")
	if err != nil {
		t.Fatalf("IsHostReachable() error = %v, want nil for a nonexistent name", err)
	}
	if reachable {
		t.Error("IsHostReachable(\"\") = true, want false")
	}
}

// Package testutil holds fixtures shared by kubewire tests: a throwaway
// certificate authority with server and client certificates, mutual TLS
// test servers, and kubeconfig files pointing at them.
package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// PKI is a CA plus one server and one client certificate, all PEM encoded.
type PKI struct {
	CAPEM         []byte
	ServerCertPEM []byte
	ServerKeyPEM  []byte
	ClientCertPEM []byte
	ClientKeyPEM  []byte

	ca    *x509.Certificate
	caKey *ecdsa.PrivateKey
}

// NewPKI creates a PKI whose server certificate is valid for localhost and
// 127.0.0.1, which is where httptest servers listen.
func NewPKI(t testing.TB) *PKI {
	return NewPKIForServer(t, []string{"localhost"}, []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback})
}

// NewPKIForServer creates a PKI whose server certificate only covers the
// given names and addresses.
func NewPKIForServer(t testing.TB, dnsNames []string, ips []net.IP) *PKI {
	t.Helper()

	caKey := newKey(t)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "kubewire-test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatalf("failed to create CA certificate: %v", err)
	}
	ca, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatalf("failed to parse CA certificate: %v", err)
	}

	p := &PKI{
		CAPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER}),
		ca:    ca,
		caKey: caKey,
	}
	p.ServerCertPEM, p.ServerKeyPEM = p.issue(t, 2, &x509.Certificate{
		Subject:     pkix.Name{CommonName: "kube-apiserver"},
		DNSNames:    dnsNames,
		IPAddresses: ips,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	p.ClientCertPEM, p.ClientKeyPEM = p.issue(t, 3, &x509.Certificate{
		Subject:     pkix.Name{CommonName: "kubewire-user", Organization: []string{"system:masters"}},
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
	return p
}

// CADER returns the CA certificate in DER form.
func (p *PKI) CADER() []byte {
	return p.ca.Raw
}

func (p *PKI) issue(t testing.TB, serial int64, template *x509.Certificate) (certPEM, keyPEM []byte) {
	t.Helper()

	key := newKey(t)
	template.SerialNumber = big.NewInt(serial)
	template.NotBefore = time.Now().Add(-time.Hour)
	template.NotAfter = time.Now().Add(24 * time.Hour)
	template.KeyUsage = x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment

	der, err := x509.CreateCertificate(rand.Reader, template, p.ca, &key.PublicKey, p.caKey)
	if err != nil {
		t.Fatalf("failed to issue certificate %q: %v", template.Subject.CommonName, err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
}

func newKey(t testing.TB) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key
}

// ServerTLSConfig requires clients to present a certificate signed by the CA.
func (p *PKI) ServerTLSConfig(t testing.TB) *tls.Config {
	t.Helper()
	cert, err := tls.X509KeyPair(p.ServerCertPEM, p.ServerKeyPEM)
	if err != nil {
		t.Fatalf("failed to load server key pair: %v", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(p.ca)
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}
}

// NewMTLSServer starts an HTTPS server that demands a client certificate
// from p's CA. The server is closed when the test ends.
func NewMTLSServer(t testing.TB, p *PKI, handler http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewUnstartedServer(handler)
	srv.TLS = p.ServerTLSConfig(t)
	srv.StartTLS()
	t.Cleanup(srv.Close)
	return srv
}

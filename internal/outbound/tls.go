package outbound

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"k8s.io/client-go/transport"
)

// buildTLSConfig compiles a RequestConfig into a tls.Config. Certificate
// parsing and client key pairing are done by client-go's transport package,
// the same code kubectl uses for kubeconfig credentials.
func buildTLSConfig(cfg RequestConfig) (*tls.Config, error) {
	tc := &transport.Config{}

	if cfg.AcceptInvalidCertificates {
		// client-go refuses a CA bundle combined with the insecure flag.
		tc.TLS.Insecure = true
	} else {
		roots, err := rootBundle(cfg.ExtraRootCertificates)
		if err != nil {
			return nil, err
		}
		tc.TLS.CAData = roots
	}

	if id := cfg.Identity; id != nil {
		if len(id.Key) == 0 || len(id.Cert) == 0 {
			return nil, errors.New("identity requires both a key and a certificate")
		}
		tc.TLS.CertData = certChain(id.Cert, id.CA)
		tc.TLS.KeyData = id.Key
	}

	tlsConfig, err := transport.TLSConfigFor(tc)
	if err != nil {
		return nil, err
	}
	if tlsConfig == nil {
		// Nothing to customise: system roots and full verification.
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if cfg.AcceptInvalidHostnames && !cfg.AcceptInvalidCertificates {
		skipHostnameVerification(tlsConfig)
	}
	return tlsConfig, nil
}

func rootBundle(certs []Certificate) ([]byte, error) {
	var buf bytes.Buffer
	for i, c := range certs {
		if len(c.Data) == 0 {
			return nil, fmt.Errorf("extra root certificate %d is empty", i)
		}
		switch c.Encoding {
		case EncodingPEM:
			buf.Write(c.Data)
			if !bytes.HasSuffix(c.Data, []byte("\n")) {
				buf.WriteByte('\n')
			}
		case EncodingDER:
			if _, err := x509.ParseCertificate(c.Data); err != nil {
				return nil, fmt.Errorf("extra root certificate %d: %w", i, err)
			}
			if err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: c.Data}); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("extra root certificate %d has unknown encoding %d", i, c.Encoding)
		}
	}
	return buf.Bytes(), nil
}

// certChain appends the issuing CA to the client certificate so the server
// receives the full chain. The leaf stays first, as tls.X509KeyPair expects.
func certChain(cert, ca []byte) []byte {
	if len(ca) == 0 {
		return cert
	}
	chain := make([]byte, 0, len(cert)+len(ca)+1)
	chain = append(chain, cert...)
	if !bytes.HasSuffix(cert, []byte("\n")) {
		chain = append(chain, '\n')
	}
	return append(chain, ca...)
}

// skipHostnameVerification keeps chain verification but drops the check
// that the certificate matches the dialled host name.
func skipHostnameVerification(c *tls.Config) {
	roots := c.RootCAs
	c.InsecureSkipVerify = true
	c.VerifyConnection = func(cs tls.ConnectionState) error {
		if len(cs.PeerCertificates) == 0 {
			return errors.New("server presented no certificates")
		}
		opts := x509.VerifyOptions{
			Roots:         roots,
			Intermediates: x509.NewCertPool(),
		}
		for _, cert := range cs.PeerCertificates[1:] {
			opts.Intermediates.AddCert(cert)
		}
		_, err := cs.PeerCertificates[0].Verify(opts)
		return err
	}
}

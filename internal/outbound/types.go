package outbound

import (
	"context"
	"strings"
	"time"
)

// Method is an HTTP method the capability knows how to send.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodPatch   Method = "PATCH"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions:
		return true
	}
	return false
}

// Pair is an ordered key/value entry, used for headers and query parameters.
type Pair struct {
	Key   string
	Value string
}

// Request is the wire shape accepted by Request. URI must be absolute.
type Request struct {
	Method  Method
	URI     string
	Headers []Pair
	Params  []Pair
	Body    []byte
}

// Response is returned verbatim to callers.
type Response struct {
	Status  int
	Headers []Pair
	Body    []byte
}

// Header returns the first value of the named response header, matched
// case-insensitively.
func (r *Response) Header(name string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Key, name) {
			return h.Value
		}
	}
	return ""
}

// CertificateEncoding tells how Certificate.Data is encoded.
type CertificateEncoding int

const (
	EncodingPEM CertificateEncoding = iota
	EncodingDER
)

// Certificate is an extra root certificate to trust.
type Certificate struct {
	Encoding CertificateEncoding
	Data     []byte
}

// Identity is a client certificate used for mutual TLS. CA is the
// certificate that issued Cert; it is sent along as part of the chain.
type Identity struct {
	Key  []byte
	Cert []byte
	CA   []byte
}

// RequestConfig describes the TLS behaviour of requests made with a handle.
type RequestConfig struct {
	AcceptInvalidHostnames    bool
	AcceptInvalidCertificates bool
	ExtraRootCertificates     []Certificate
	Identity                  *Identity
}

// Handle identifies a registered RequestConfig.
type Handle string

// Registrar stores request configurations and hands out handles for them.
type Registrar interface {
	RegisterRequestConfig(cfg RequestConfig, ttl *time.Duration) (Handle, error)
}

// Executor performs wire requests, optionally using a registered config.
type Executor interface {
	Request(ctx context.Context, req Request, handle *Handle) (*Response, error)
}

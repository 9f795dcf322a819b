// Package wire turns ordinary *http.Request values into requests the
// outbound HTTP capability can execute against a Kubernetes API server.
//
// Requests are expected to carry a relative or placeholder authority (as
// produced by the kubeapi builders); the authority is always replaced by the
// server of the ConnectionConfig.
package wire

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"kubewire/internal/connection"
	"kubewire/internal/kerrors"
	"kubewire/internal/outbound"
)

var (
	errNoAuthority  = errors.New("server URL has no authority")
	errRelativePath = errors.New("request path must be absolute")
)

// WireRequest is the capability-ready form of a request.
type WireRequest = outbound.Request

var methods = map[string]outbound.Method{
	http.MethodGet:     outbound.MethodGet,
	http.MethodPost:    outbound.MethodPost,
	http.MethodPut:     outbound.MethodPut,
	http.MethodDelete:  outbound.MethodDelete,
	http.MethodPatch:   outbound.MethodPatch,
	http.MethodHead:    outbound.MethodHead,
	http.MethodOptions: outbound.MethodOptions,
}

// ConvertMethod maps an HTTP method onto the capability's closed set.
// Anything outside GET, POST, PUT, DELETE, PATCH, HEAD and OPTIONS fails,
// including the empty method a hand-built http.Request may carry.
func ConvertMethod(method string) (outbound.Method, error) {
	m, ok := methods[method]
	if !ok {
		return "", &kerrors.TranslationError{Kind: kerrors.KindMethodNotSupported, Detail: method}
	}
	return m, nil
}

// Translate builds the wire request for req, addressed to cc's server.
// The method is validated before the URI is built. A server URL without an
// authority is reported as a *kerrors.ConfigError.
func Translate(req *http.Request, cc *connection.ConnectionConfig) (*WireRequest, error) {
	method, err := ConvertMethod(req.Method)
	if err != nil {
		return nil, err
	}

	uri, err := TargetURI(cc.Server.URL, req.URL)
	if err != nil {
		return nil, err
	}

	body, err := readBody(req)
	if err != nil {
		return nil, err
	}

	var rawQuery string
	if req.URL != nil {
		rawQuery = req.URL.RawQuery
	}

	return &WireRequest{
		Method:  method,
		URI:     uri,
		Headers: FlattenHeaders(req.Header),
		Params:  SplitQuery(rawQuery),
		Body:    body,
	}, nil
}

// MakeRequest translates req and executes it through exec with handle. The
// capability's response, or its error, is returned untouched. Nothing is
// sent if translation fails.
func MakeRequest(ctx context.Context, req *http.Request, cc *connection.ConnectionConfig, handle outbound.Handle, exec outbound.Executor) (*outbound.Response, error) {
	wireReq, err := Translate(req, cc)
	if err != nil {
		return nil, err
	}
	return exec.Request(ctx, *wireReq, &handle)
}

// readBody returns the full body, never nil, and leaves req.Body readable
// again so the caller can reuse the request.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return []byte{}, nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, &kerrors.TranslationError{Kind: kerrors.KindBodyRead, Err: err}
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// FlattenHeaders turns h into ordered pairs: keys in canonical sorted order,
// values in the order they were added. Values that are not valid UTF-8 are
// dropped without error.
func FlattenHeaders(h http.Header) []outbound.Pair {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]outbound.Pair, 0, len(keys))
	for _, k := range keys {
		for _, v := range h[k] {
			if !utf8.ValidString(v) {
				continue
			}
			pairs = append(pairs, outbound.Pair{Key: k, Value: v})
		}
	}
	return pairs
}

// SplitQuery splits a raw query string into ordered key/value pairs. Each
// piece is split on its first '=' only; pieces without '=' are dropped.
// Keys and values are kept as written, without percent-decoding.
func SplitQuery(rawQuery string) []outbound.Pair {
	params := []outbound.Pair{}
	if rawQuery == "" {
		return params
	}
	for _, piece := range strings.Split(rawQuery, "&") {
		key, value, ok := strings.Cut(piece, "=")
		if !ok {
			continue
		}
		params = append(params, outbound.Pair{Key: key, Value: value})
	}
	return params
}

// TargetURI combines the scheme and authority of serverURL, userinfo
// included, with the path and query of target. The scheme defaults to https when serverURL has none.
// Whatever scheme and host target carries are discarded.
func TargetURI(serverURL string, target *url.URL) (string, error) {
	server, err := parseServerURL(serverURL)
	if err != nil {
		return "", err
	}

	path := "/"
	var rawQuery string
	var forceQuery bool
	if target != nil {
		if p := target.EscapedPath(); p != "" {
			path = p
		}
		rawQuery = target.RawQuery
		forceQuery = target.ForceQuery
	}
	if !strings.HasPrefix(path, "/") {
		return "", &kerrors.TranslationError{Kind: kerrors.KindInvalidURI, Detail: path, Err: errRelativePath}
	}

	var b strings.Builder
	b.WriteString(server.Scheme)
	b.WriteString("://")
	if server.User != nil {
		b.WriteString(server.User.String())
		b.WriteByte('@')
	}
	b.WriteString(server.Host)
	b.WriteString(path)
	if rawQuery != "" || forceQuery {
		b.WriteByte('?')
		b.WriteString(rawQuery)
	}

	uri := b.String()
	if _, err := url.ParseRequestURI(uri); err != nil {
		return "", &kerrors.TranslationError{Kind: kerrors.KindInvalidURI, Detail: uri, Err: err}
	}
	return uri, nil
}

// parseServerURL accepts "https://host:port" as well as a bare "host:port".
func parseServerURL(raw string) (*url.URL, error) {
	toParse := raw
	if !strings.Contains(raw, "://") {
		toParse = "//" + raw
	}
	u, err := url.Parse(toParse)
	if err != nil {
		return nil, &kerrors.ConfigError{Kind: kerrors.KindInvalidServerURL, Detail: raw, Err: err}
	}
	if u.Host == "" {
		return nil, &kerrors.ConfigError{Kind: kerrors.KindInvalidServerURL, Detail: raw, Err: errNoAuthority}
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u, nil
}

// Package kubeapi builds requests for a handful of Kubernetes API calls and
// decodes their responses.
//
// Requests carry a path and query only. The wire package fills in the
// server authority when the request is sent.
package kubeapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/scheme"
)

const contentTypeJSON = "application/json"

// ListPods lists pods in namespace, or across all namespaces when namespace
// is empty.
func ListPods(namespace string, opts metav1.ListOptions) (*http.Request, error) {
	path := "/api/v1/pods"
	if namespace != "" {
		path = "/api/v1/namespaces/" + url.PathEscape(namespace) + "/pods"
	}
	return newListRequest(path, opts)
}

// ListNamespaces lists all namespaces.
func ListNamespaces(opts metav1.ListOptions) (*http.Request, error) {
	return newListRequest("/api/v1/namespaces", opts)
}

// GetNamespace reads a single namespace.
func GetNamespace(name string) (*http.Request, error) {
	if name == "" {
		return nil, fmt.Errorf("namespace name must not be empty")
	}
	return newRequest(http.MethodGet, "/api/v1/namespaces/"+url.PathEscape(name), nil)
}

// GetVersion reads the server version.
func GetVersion() (*http.Request, error) {
	return newRequest(http.MethodGet, "/version", nil)
}

// Raw builds a request for an arbitrary API path. The query part of path, if
// any, is kept verbatim.
func Raw(method, path string, body []byte) (*http.Request, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid API path %q: %w", path, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return nil, fmt.Errorf("API path %q must not carry a scheme or host", path)
	}
	return newRequest(method, u.RequestURI(), body)
}

func newListRequest(path string, opts metav1.ListOptions) (*http.Request, error) {
	query, err := scheme.ParameterCodec.EncodeParameters(&opts, corev1.SchemeGroupVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list options: %w", err)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return newRequest(http.MethodGet, path, nil)
}

func newRequest(method, target string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s: %w", method, target, err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	if len(body) > 0 {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	return req, nil
}

package outbound

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	utilnet "k8s.io/apimachinery/pkg/util/net"

	"kubewire/pkg/logging"
)

// DefaultTimeout bounds a single request when no other timeout applies.
const DefaultTimeout = 30 * time.Second

type registeredConfig struct {
	client  *http.Client
	expires time.Time // zero means no expiry
}

// Client is an in-process outbound HTTP capability. It keeps a table of
// registered TLS configurations and executes wire requests with them.
// Client is safe for concurrent use.
type Client struct {
	mu      sync.RWMutex
	configs map[Handle]*registeredConfig

	allowedHosts []string
	timeout      time.Duration
	defaultTTL   time.Duration
	now          func() time.Time
	newHandle    func() Handle
	plain        *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAllowedHosts restricts the destinations requests may reach. Entries
// are host names, host:port pairs or URLs; "*" allows everything. Without
// this option every destination is allowed.
func WithAllowedHosts(hosts ...string) Option {
	return func(c *Client) {
		c.allowedHosts = append(c.allowedHosts, hosts...)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithDefaultTTL makes handles registered without a ttl expire after d.
// Zero keeps them until Unregister.
func WithDefaultTTL(d time.Duration) Option {
	return func(c *Client) {
		c.defaultTTL = d
	}
}

// WithClock replaces time.Now, for handle expiry in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		configs: make(map[Handle]*registeredConfig),
		timeout: DefaultTimeout,
		now:     time.Now,
		newHandle: func() Handle {
			return Handle(uuid.NewString())
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.plain = c.httpClient(nil)
	return c
}

// RegisterRequestConfig compiles cfg and stores it under a new handle. A
// non-nil ttl makes the handle expire; expired handles are treated as
// unknown. Every call returns a distinct handle, even for equal configs.
func (c *Client) RegisterRequestConfig(cfg RequestConfig, ttl *time.Duration) (Handle, error) {
	tlsConfig, err := buildTLSConfig(cfg)
	if err != nil {
		return "", &Error{Code: InvalidCfg, Err: err}
	}

	entry := &registeredConfig{client: c.httpClient(tlsConfig)}
	if ttl == nil && c.defaultTTL > 0 {
		ttl = &c.defaultTTL
	}
	if ttl != nil {
		if *ttl <= 0 {
			return "", newError(InvalidCfg, "ttl must be positive, got %s", *ttl)
		}
		entry.expires = c.now().Add(*ttl)
	}

	handle := c.newHandle()

	c.mu.Lock()
	c.configs[handle] = entry
	c.mu.Unlock()

	logging.Debug("Outbound", "registered request config %s (roots=%d, identity=%t)",
		handle, len(cfg.ExtraRootCertificates), cfg.Identity != nil)
	return handle, nil
}

// Unregister drops a handle. Unknown handles are ignored.
func (c *Client) Unregister(handle Handle) {
	c.mu.Lock()
	delete(c.configs, handle)
	c.mu.Unlock()
}

// Registered reports whether handle is known and not expired.
func (c *Client) Registered(handle Handle) bool {
	_, ok := c.lookup(handle)
	return ok
}

func (c *Client) lookup(handle Handle) (*registeredConfig, bool) {
	c.mu.RLock()
	entry, ok := c.configs[handle]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		c.Unregister(handle)
		return nil, false
	}
	return entry, true
}

// Request executes req. With a nil handle the system trust store is used
// and no client certificate is presented.
func (c *Client) Request(ctx context.Context, req Request, handle *Handle) (*Response, error) {
	client := c.plain
	if handle != nil {
		entry, ok := c.lookup(*handle)
		if !ok {
			return nil, newError(InvalidCfg, "unknown or expired request config %q", *handle)
		}
		client = entry.client
	}

	if !req.Method.Valid() {
		return nil, newError(RequestError, "unsupported method %q", req.Method)
	}

	u, err := url.Parse(req.URI)
	if err != nil {
		return nil, &Error{Code: InvalidURL, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, newError(InvalidURL, "%q is not an absolute URL", req.URI)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, newError(InvalidURL, "unsupported scheme %q", u.Scheme)
	}
	if !c.destinationAllowed(u) {
		return nil, newError(DestinationNotAllowed, "%s is not in the allowed hosts", u.Host)
	}
	// Params travel inside the URI when it already has a query string.
	if u.RawQuery == "" && len(req.Params) > 0 {
		u.RawQuery = joinParams(req.Params)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), u.String(), bytes.NewReader(req.Body))
	if err != nil {
		return nil, &Error{Code: RuntimeError, Err: err}
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Key, h.Value)
	}

	logging.Debug("Outbound", "%s %s", req.Method, u.Redacted())

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &Error{Code: RequestError, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Code: RequestError, Err: err}
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: flattenHeader(resp.Header),
		Body:    body,
	}, nil
}

func (c *Client) httpClient(tlsConfig *tls.Config) *http.Client {
	t := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: tlsConfig,
	}
	return &http.Client{
		Transport: utilnet.SetTransportDefaults(t),
		Timeout:   c.timeout,
	}
}

func (c *Client) destinationAllowed(u *url.URL) bool {
	if len(c.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range c.allowedHosts {
		if allowed == "*" {
			return true
		}
		if strings.Contains(allowed, "://") {
			a, err := url.Parse(allowed)
			if err == nil && a.Scheme == u.Scheme && strings.EqualFold(a.Host, u.Host) {
				return true
			}
			continue
		}
		if strings.EqualFold(allowed, u.Host) || strings.EqualFold(allowed, u.Hostname()) {
			return true
		}
	}
	return false
}

func joinParams(params []Pair) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, "&")
}

func flattenHeader(h http.Header) []Pair {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []Pair
	for _, k := range keys {
		for _, v := range h[k] {
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
	}
	return pairs
}

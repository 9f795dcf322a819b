package kubeapi

import (
	"context"
	"net/http"

	"kubewire/internal/connection"
	"kubewire/internal/outbound"
	"kubewire/internal/wire"
	"kubewire/pkg/logging"
)

// Client sends kubeapi requests through a registered outbound handle.
type Client struct {
	conn   *connection.ConnectionConfig
	handle outbound.Handle
	exec   outbound.Executor
}

// NewClient registers conn with capability and returns a Client that reuses
// the resulting handle for every request.
func NewClient(conn *connection.ConnectionConfig, capability interface {
	outbound.Registrar
	outbound.Executor
}) (*Client, error) {
	handle, err := conn.Register(capability)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, handle: handle, exec: capability}, nil
}

// Handle returns the registration handle used by c.
func (c *Client) Handle() outbound.Handle {
	return c.handle
}

// Do sends req and returns the raw response, whatever its status.
func (c *Client) Do(ctx context.Context, req *http.Request) (*outbound.Response, error) {
	logging.Debug("KubeAPI", "%s %s", req.Method, req.URL.RequestURI())
	return wire.MakeRequest(ctx, req, c.conn, c.handle, c.exec)
}

// DoInto sends req and decodes a successful response into into.
func (c *Client) DoInto(ctx context.Context, req *http.Request, into interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return Decode(resp, into)
}

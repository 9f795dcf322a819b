// Package mcptools exposes kubewire's connection and request operations as
// MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"kubewire/internal/connection"
	"kubewire/internal/kubeapi"
	"kubewire/internal/outbound"
	"kubewire/pkg/logging"
)

const (
	ToolConnectionInfo = "kube_connection_info"
	ToolAPIRequest     = "kube_api_request"
)

// Capability is the outbound HTTP capability the tools send requests with.
type Capability interface {
	outbound.Registrar
	outbound.Executor
}

// registrationChecker is implemented by capabilities that can tell whether
// a handle is still live.
type registrationChecker interface {
	Registered(handle outbound.Handle) bool
}

// Tools serves the kubewire MCP tools. The connection is resolved and
// registered on first use and reused afterwards. An expired registration is
// replaced by a new one.
type Tools struct {
	resolve    func() (*connection.ConnectionConfig, error)
	capability Capability

	mu     sync.Mutex
	conn   *connection.ConnectionConfig
	client *kubeapi.Client
}

// NewTools creates the tool set. resolve is called lazily, so a broken
// kubeconfig is reported per call instead of preventing startup.
func NewTools(resolve func() (*connection.ConnectionConfig, error), capability Capability) *Tools {
	return &Tools{resolve: resolve, capability: capability}
}

// GetTools returns the tool definitions.
func (t *Tools) GetTools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolConnectionInfo,
			mcp.WithDescription("Show the Kubernetes API server and context kubewire connects to"),
		),
		mcp.NewTool(ToolAPIRequest,
			mcp.WithDescription("Send a request to the Kubernetes API server using the current kubeconfig context"),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("API path including query, for example /api/v1/namespaces/default/pods?limit=10"),
			),
			mcp.WithString("method",
				mcp.Description("HTTP method, GET if omitted"),
				mcp.Enum("GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"),
			),
			mcp.WithString("body",
				mcp.Description("JSON request body"),
			),
		),
	}
}

// Register adds the tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	tools := t.GetTools()
	s.AddTool(tools[0], t.HandleConnectionInfo)
	s.AddTool(tools[1], t.HandleAPIRequest)
}

// NewServer creates an MCP server exposing the tools.
func NewServer(version string, t *Tools) *server.MCPServer {
	s := server.NewMCPServer("kubewire", version,
		server.WithToolCapabilities(false),
	)
	t.Register(s)
	return s
}

type connectionInfo struct {
	Context   string `json:"context"`
	Namespace string `json:"namespace,omitempty"`
	Server    string `json:"server"`
	Handle    string `json:"handle"`
}

// HandleConnectionInfo describes the resolved connection. Key material is
// never included.
func (t *Tools) HandleConnectionInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	client, conn, err := t.ensureClient()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve connection: %v", err)), nil
	}

	return jsonResult(connectionInfo{
		Context:   conn.ContextName,
		Namespace: conn.Namespace,
		Server:    conn.Server.URL,
		Handle:    string(client.Handle()),
	})
}

type apiResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
	Text    string            `json:"text,omitempty"`
}

// HandleAPIRequest sends one request to the API server and returns the
// status, headers and body. Non-2xx responses are results, not errors.
func (t *Tools) HandleAPIRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path parameter is required"), nil
	}
	method := "GET"
	if m, ok := request.GetArguments()["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}
	var body []byte
	if b, ok := request.GetArguments()["body"].(string); ok {
		body = []byte(b)
	}

	client, _, err := t.ensureClient()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve connection: %v", err)), nil
	}

	req, err := kubeapi.Raw(method, path, body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := client.Do(ctx, req)
	if errors.Is(err, outbound.InvalidCfg) {
		// The handle expired between the check and the request.
		t.dropClient(client)
		client, _, err = t.ensureClient()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve connection: %v", err)), nil
		}
		resp, err = client.Do(ctx, req)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Request failed: %v", err)), nil
	}

	out := apiResponse{Status: resp.Status, Headers: map[string]string{}}
	for _, h := range resp.Headers {
		if _, seen := out.Headers[h.Key]; !seen {
			out.Headers[h.Key] = h.Value
		}
	}
	if json.Valid(resp.Body) {
		out.Body = resp.Body
	} else {
		out.Text = string(resp.Body)
	}
	return jsonResult(out)
}

func (t *Tools) ensureClient() (*kubeapi.Client, *connection.ConnectionConfig, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client != nil {
		checker, ok := t.capability.(registrationChecker)
		if !ok || checker.Registered(t.client.Handle()) {
			return t.client, t.conn, nil
		}
		logging.Info("MCPTools", "Registration %s expired, registering again", t.client.Handle())
		t.client = nil
	}

	conn := t.conn
	if conn == nil {
		var err error
		conn, err = t.resolve()
		if err != nil {
			return nil, nil, err
		}
	}
	client, err := kubeapi.NewClient(conn, t.capability)
	if err != nil {
		return nil, nil, err
	}
	logging.Info("MCPTools", "Registered connection to %s (context %s)", conn.Server.URL, conn.ContextName)

	t.conn, t.client = conn, client
	return client, conn, nil
}

// dropClient forgets client if it is still the cached one.
func (t *Tools) dropClient(client *kubeapi.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == client {
		t.client = nil
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"kubewire/internal/mcptools"
	"kubewire/pkg/logging"
)

// For mocking in tests
var serveStdio = func(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve kubewire's tools over MCP on stdio",
		Long: `Starts an MCP server on stdin/stdout exposing two tools:

  kube_connection_info  shows the resolved server and context
  kube_api_request      sends a request to the API server

The kubeconfig is resolved and registered on the first tool call, so the
server starts even when the kubeconfig is not usable yet. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tools := mcptools.NewTools(opts.connection, opts.capability())
			s := mcptools.NewServer(cmd.Root().Version, tools)

			logging.Info("Serve", "Serving MCP tools on stdio")
			return serveStdio(s)
		},
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kubewire/internal/color"
	"kubewire/internal/connection"
)

// connectionSummary is what resolve shows. It carries sizes, never key
// material.
type connectionSummary struct {
	Context       string `json:"context"`
	Namespace     string `json:"namespace,omitempty"`
	Server        string `json:"server"`
	ServerCABytes int    `json:"serverCABytes"`
	UserCertBytes int    `json:"userCertBytes"`
	UserKeyBytes  int    `json:"userKeyBytes"`
	UserCABytes   int    `json:"userCABytes"`
}

func summarize(conn *connection.ConnectionConfig) connectionSummary {
	return connectionSummary{
		Context:       conn.ContextName,
		Namespace:     conn.Namespace,
		Server:        conn.Server.URL,
		ServerCABytes: len(conn.Server.CA),
		UserCertBytes: len(conn.Identity.Cert),
		UserKeyBytes:  len(conn.Identity.Key),
		UserCABytes:   len(conn.Identity.CA),
	}
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the current kubeconfig context into a connection configuration",
		Long: `Resolves the current context of the kubeconfig: its cluster, user, client
certificate, client key and certificate authority. Inline base64 data takes
precedence over file paths. Only sizes are printed, never key material.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := opts.connection()
			if err != nil {
				return err
			}
			summary := summarize(conn)

			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			case "", "text":
				fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want text or json)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}

func renderSummary(s connectionSummary) string {
	namespace := s.Namespace
	if namespace == "" {
		namespace = color.MutedStyle.Render("(none)")
	}

	rows := []struct{ label, value string }{
		{"Context", s.Context},
		{"Namespace", namespace},
		{"Server", s.Server},
		{"Server CA", fmt.Sprintf("%d bytes", s.ServerCABytes)},
		{"Client cert", fmt.Sprintf("%d bytes", s.UserCertBytes)},
		{"Client key", fmt.Sprintf("%d bytes", s.UserKeyBytes)},
		{"Client CA", fmt.Sprintf("%d bytes", s.UserCABytes)},
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			color.LabelStyle.Render(r.label),
			color.ValueStyle.Render(r.value),
		))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		color.TitleStyle.Render("Connection"),
		strings.Join(lines, "\n"),
	)
	return color.BoxStyle.Render(body)
}

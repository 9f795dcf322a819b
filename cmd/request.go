package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kubewire/internal/color"
	"kubewire/internal/kubeapi"
)

func newRequestCmd(opts *rootOptions) *cobra.Command {
	var (
		data     string
		dataFile string
		include  bool
	)

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send a raw request to the Kubernetes API server",
		Long: `Sends one request to the API server of the current context. PATH is an API
path with an optional query, for example /api/v1/namespaces?limit=5. The
response body is written to stdout; a non-2xx status is reported as an error
after the body is printed.`,
		Example: `  kubewire request GET /version
  kubewire request GET '/api/v1/namespaces/default/pods?labelSelector=app%3Dweb'
  kubewire request POST /api/v1/namespaces/default/configmaps --data-file cm.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(args[0])
			path := args[1]

			body := []byte(data)
			if dataFile != "" {
				if data != "" {
					return fmt.Errorf("--data and --data-file are mutually exclusive")
				}
				var err error
				body, err = os.ReadFile(dataFile)
				if err != nil {
					return fmt.Errorf("failed to read request body: %w", err)
				}
			}

			req, err := kubeapi.Raw(method, path, body)
			if err != nil {
				return err
			}

			client, _, err := opts.kubeClient()
			if err != nil {
				return err
			}

			resp, err := client.Do(cmd.Context(), req)
			if err != nil {
				return err
			}

			if include {
				status := fmt.Sprintf("%d", resp.Status)
				fmt.Fprintln(cmd.ErrOrStderr(), color.StatusStyle(resp.Status).Render(status))
				for _, h := range resp.Headers {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", color.MutedStyle.Render(h.Key), h.Value)
				}
			}

			out := cmd.OutOrStdout()
			_, _ = out.Write(resp.Body)
			if len(resp.Body) > 0 && resp.Body[len(resp.Body)-1] != '\n' {
				fmt.Fprintln(out)
			}

			return kubeapi.Decode(resp, nil)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "Request body")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "Read the request body from a file")
	cmd.Flags().BoolVarP(&include, "include", "i", false, "Print status and response headers to stderr")
	return cmd
}

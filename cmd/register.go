package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"kubewire/internal/color"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var times int

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register the resolved connection with the outbound capability",
		Long: `Resolves the current kubeconfig context and registers it with the outbound
HTTP capability, printing the handle. Every registration yields a new handle,
even for the same connection; use --times to see this.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if times < 1 {
				return fmt.Errorf("--times must be at least 1, got %d", times)
			}

			conn, err := opts.connection()
			if err != nil {
				return err
			}

			capability := opts.capability()
			for i := 0; i < times; i++ {
				handle, err := conn.Register(capability)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), handle)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), color.MutedStyle.Render(
				fmt.Sprintf("registered %d request config(s) for %s", times, conn.Server.URL)))
			return nil
		},
	}

	cmd.Flags().IntVar(&times, "times", 1, "Number of times to register")
	return cmd
}

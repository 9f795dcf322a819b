package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kubewire/internal/color"
	"kubewire/internal/config"
	"kubewire/internal/connection"
	"kubewire/internal/kubeapi"
	"kubewire/internal/outbound"
	"kubewire/pkg/logging"
)

// For mocking in tests
var loadConfig = config.LoadConfig

// rootOptions holds the global flags and the configuration they resolve to.
type rootOptions struct {
	kubeconfig     string
	logLevel       string
	logFormat      string
	allowedHosts   []string
	requestTimeout time.Duration
	handleTTL      time.Duration

	config config.KubewireConfig
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "kubewire",
		Short: "Talk to a Kubernetes API server through a sandboxed HTTP capability",
		Long: `kubewire resolves the current kubeconfig context into a mutual TLS
connection configuration, registers it with an outbound HTTP capability and
sends Kubernetes API requests through the returned handle.

Configuration is read from ~/.config/kubewire/config.yaml and
./.kubewire/config.yaml; flags override both.`,
		// SilenceUsage is set to true to prevent printing usage message on errors
		// handled by us (e.g. invalid arguments, failed connections)
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	opts.addFlags(cmd.PersistentFlags())

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newResolveCmd(opts))
	cmd.AddCommand(newRegisterCmd(opts))
	cmd.AddCommand(newRequestCmd(opts))
	cmd.AddCommand(newGetCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

func (o *rootOptions) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file (default: $KUBECONFIG or ~/.kube/config)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&o.logFormat, "log-format", "", "Log format on stderr: text or json")
	flags.StringSliceVar(&o.allowedHosts, "allowed-host", nil, "Destination the outbound client may reach (repeatable, default: any)")
	flags.DurationVar(&o.requestTimeout, "timeout", 0, "Timeout for a single API request")
	flags.DurationVar(&o.handleTTL, "handle-ttl", 0, "Expire registered request configs after this long")
}

// setup loads the layered configuration, applies flag overrides and
// initializes logging and colors.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("kubeconfig") {
		cfg.Kubeconfig = o.kubeconfig
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("allowed-host") {
		cfg.AllowedHosts = o.allowedHosts
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = o.requestTimeout
	}
	if flags.Changed("handle-ttl") {
		cfg.HandleTTL = o.handleTTL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.LogFormat == config.LogFormatJSON {
		logging.InitForJSON(level, cmd.ErrOrStderr())
	} else {
		logging.InitForCLI(level, cmd.ErrOrStderr())
	}
	color.InitializeFromEnv()

	o.config = cfg
	logging.Debug("CLI", "effective configuration: kubeconfig=%q allowedHosts=%v timeout=%s handleTTL=%s",
		cfg.Kubeconfig, cfg.AllowedHosts, cfg.RequestTimeout, cfg.HandleTTL)
	return nil
}

func (o *rootOptions) connection() (*connection.ConnectionConfig, error) {
	return connection.FromKubeConfigPath(o.config.Kubeconfig)
}

func (o *rootOptions) capability() *outbound.Client {
	opts := []outbound.Option{outbound.WithAllowedHosts(o.config.AllowedHosts...)}
	if o.config.RequestTimeout > 0 {
		opts = append(opts, outbound.WithTimeout(o.config.RequestTimeout))
	}
	if o.config.HandleTTL > 0 {
		opts = append(opts, outbound.WithDefaultTTL(o.config.HandleTTL))
	}
	return outbound.NewClient(opts...)
}

// kubeClient resolves the connection and registers it once.
func (o *rootOptions) kubeClient() (*kubeapi.Client, *connection.ConnectionConfig, error) {
	conn, err := o.connection()
	if err != nil {
		return nil, nil, err
	}
	client, err := kubeapi.NewClient(conn, o.capability())
	if err != nil {
		return nil, nil, err
	}
	return client, conn, nil
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "kubewire version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

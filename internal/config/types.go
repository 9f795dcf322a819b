package config

import "time"

// KubewireConfig is the top-level configuration of the kubewire tool.
type KubewireConfig struct {
	// Kubeconfig is an explicit kubeconfig path. Empty means the usual
	// KUBECONFIG / ~/.kube/config lookup.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	// AllowedHosts limits the destinations the outbound client may reach.
	// Entries are host names, host:port pairs or URLs. Empty allows all.
	AllowedHosts []string `yaml:"allowedHosts,omitempty"`

	// RequestTimeout bounds a single API request.
	RequestTimeout time.Duration `yaml:"requestTimeout,omitempty"`

	// HandleTTL expires registered request configs. Zero keeps them for the
	// life of the process.
	HandleTTL time.Duration `yaml:"handleTTL,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"logLevel,omitempty"`

	// LogFormat is text or json. Empty means text.
	LogFormat string `yaml:"logFormat,omitempty"`
}

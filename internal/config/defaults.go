package config

import "time"

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// GetDefaultConfig returns the built-in configuration: ambient kubeconfig,
// every destination allowed, no handle expiry.
func GetDefaultConfig() KubewireConfig {
	return KubewireConfig{
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       DefaultLogLevel,
	}
}

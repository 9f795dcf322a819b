package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"kubewire/pkg/logging"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/kubewire"
	projectConfigDir = ".kubewire"
	configFileName   = "config.yaml"
)

// LoadConfig loads the kubewire configuration by layering default, user, and project settings.
func LoadConfig() (KubewireConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional
		logging.Warn("Config", "Could not determine user config path: %v", err)
	} else {
		config, err = mergeFile(config, userConfigPath)
		if err != nil {
			return KubewireConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn("Config", "Could not determine project config path: %v", err)
	} else {
		config, err = mergeFile(config, projectConfigPath)
		if err != nil {
			return KubewireConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
	}

	if err := config.Validate(); err != nil {
		return KubewireConfig{}, err
	}
	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// mergeFile overlays the file at path onto base. A missing file leaves base
// unchanged.
func mergeFile(base KubewireConfig, path string) (KubewireConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return KubewireConfig{}, err
	}
	logging.Debug("Config", "Loaded configuration layer %s", path)
	return mergeConfigs(base, overlay), nil
}

// loadConfigFromFile loads a KubewireConfig from a YAML file.
func loadConfigFromFile(filePath string) (KubewireConfig, error) {
	var config KubewireConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return KubewireConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return KubewireConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Fields left
// empty in overlay keep the base value; a non-empty host list replaces the
// base list as a whole.
func mergeConfigs(base, overlay KubewireConfig) KubewireConfig {
	merged := base

	if overlay.Kubeconfig != "" {
		merged.Kubeconfig = overlay.Kubeconfig
	}
	if len(overlay.AllowedHosts) > 0 {
		merged.AllowedHosts = append([]string(nil), overlay.AllowedHosts...)
	}
	if overlay.RequestTimeout != 0 {
		merged.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.HandleTTL != 0 {
		merged.HandleTTL = overlay.HandleTTL
	}
	if overlay.LogLevel != "" {
		merged.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		merged.LogFormat = overlay.LogFormat
	}

	return merged
}

// Validate checks values that cannot be used as they are.
func (c KubewireConfig) Validate() error {
	if c.RequestTimeout < 0 {
		return fmt.Errorf("requestTimeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.HandleTTL < 0 {
		return fmt.Errorf("handleTTL must not be negative, got %s", c.HandleTTL)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel: %w", err)
	}
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid logFormat %q (want %s or %s)", c.LogFormat, LogFormatText, LogFormatJSON)
	}
	return nil
}

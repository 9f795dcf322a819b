package kubeconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"k8s.io/client-go/tools/clientcmd"

	"kubewire/pkg/logging"
)

// ErrNotFound is returned when none of the candidate kubeconfig files exist.
var ErrNotFound = errors.New("no kubeconfig file found")

// loadingPrecedence returns the files consulted by LoadDefault, in order.
// It follows kubectl: $KUBECONFIG entries if set, ~/.kube/config otherwise.
var loadingPrecedence = func() []string {
	return clientcmd.NewDefaultClientConfigLoadingRules().GetLoadingPrecedence()
}

// LoadDefault loads the ambient kube configuration.
func LoadDefault() (*Config, error) {
	return LoadFiles(loadingPrecedence())
}

// Load loads the kubeconfig at explicitPath, or the ambient configuration if
// explicitPath is empty. An explicit file must exist.
func Load(explicitPath string) (*Config, error) {
	if explicitPath == "" {
		return LoadDefault()
	}
	return LoadFile(explicitPath)
}

// LoadFile parses a single kubeconfig file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig %s: %w", path, err)
	}
	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kubeconfig %s: %w", path, err)
	}
	resolveRelativePaths(config, filepath.Dir(path))
	return config, nil
}

// LoadFiles loads and merges several kubeconfig files. Files that do not
// exist are skipped; any other read or parse failure aborts the load.
func LoadFiles(paths []string) (*Config, error) {
	var merged *Config
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logging.Debug("KubeConfig", "skipping missing kubeconfig %s", path)
			continue
		}
		config, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		logging.Debug("KubeConfig", "loaded kubeconfig %s", path)
		if merged == nil {
			merged = config
			continue
		}
		merged = merge(merged, config)
	}
	if merged == nil {
		return nil, fmt.Errorf("%w (searched %v)", ErrNotFound, paths)
	}
	return merged, nil
}

// Parse decodes kubeconfig YAML. File references are left as written.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// merge folds overlay into base. Entries already defined in base win, which
// is how kubectl treats multiple files in $KUBECONFIG.
func merge(base, overlay *Config) *Config {
	if base.CurrentContext == "" {
		base.CurrentContext = overlay.CurrentContext
	}

	for _, c := range overlay.Clusters {
		if !hasCluster(base, c.Name) {
			base.Clusters = append(base.Clusters, c)
		}
	}
	for _, c := range overlay.Contexts {
		if base.GetContext(c.Name) == nil {
			base.Contexts = append(base.Contexts, c)
		}
	}
	for _, u := range overlay.Users {
		if !hasUser(base, u.Name) {
			base.Users = append(base.Users, u)
		}
	}
	return base
}

func hasCluster(c *Config, name string) bool {
	for _, existing := range c.Clusters {
		if existing.Name == name {
			return true
		}
	}
	return false
}

func hasUser(c *Config, name string) bool {
	for _, existing := range c.Users {
		if existing.Name == name {
			return true
		}
	}
	return false
}

func resolveRelativePaths(c *Config, baseDir string) {
	for i := range c.Clusters {
		c.Clusters[i].Cluster.CertificateAuthority = resolvePath(c.Clusters[i].Cluster.CertificateAuthority, baseDir)
	}
	for i := range c.Users {
		c.Users[i].User.ClientCertificate = resolvePath(c.Users[i].User.ClientCertificate, baseDir)
		c.Users[i].User.ClientKey = resolvePath(c.Users[i].User.ClientKey, baseDir)
	}
}

func resolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

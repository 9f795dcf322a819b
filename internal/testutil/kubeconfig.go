package testutil

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"kubewire/internal/kubeconfig"
)

// Credentials selects how each piece of material is written to the
// kubeconfig. Data fields are written inline (base64 encoded), path fields
// as file references; both may be set.
type Credentials struct {
	CAData   []byte
	CAPath   string
	CertData []byte
	CertPath string
	KeyData  []byte
	KeyPath  string
}

// InlineCredentials embeds all of p's client material.
func (p *PKI) InlineCredentials() Credentials {
	return Credentials{CAData: p.CAPEM, CertData: p.ClientCertPEM, KeyData: p.ClientKeyPEM}
}

// FileCredentials writes p's client material to dir and references it.
func (p *PKI) FileCredentials(t testing.TB, dir string) Credentials {
	t.Helper()
	return Credentials{
		CAPath:   WriteFile(t, dir, "ca.crt", p.CAPEM),
		CertPath: WriteFile(t, dir, "client.crt", p.ClientCertPEM),
		KeyPath:  WriteFile(t, dir, "client.key", p.ClientKeyPEM),
	}
}

// NewKubeconfig builds a single-context kubeconfig for server.
func NewKubeconfig(server string, creds Credentials) *kubeconfig.Config {
	return &kubeconfig.Config{
		APIVersion:     "v1",
		Kind:           "Config",
		CurrentContext: "test",
		Clusters: []kubeconfig.NamedCluster{{
			Name: "test-cluster",
			Cluster: kubeconfig.Cluster{
				Server:                   server,
				CertificateAuthorityData: encode(creds.CAData),
				CertificateAuthority:     creds.CAPath,
			},
		}},
		Contexts: []kubeconfig.NamedContext{{
			Name:    "test",
			Context: kubeconfig.Context{Cluster: "test-cluster", User: "test-user"},
		}},
		Users: []kubeconfig.NamedUser{{
			Name: "test-user",
			User: kubeconfig.User{
				ClientCertificateData: encode(creds.CertData),
				ClientCertificate:     creds.CertPath,
				ClientKeyData:         encode(creds.KeyData),
				ClientKey:             creds.KeyPath,
			},
		}},
	}
}

// WriteKubeconfig writes config to dir and points $KUBECONFIG at it for the
// rest of the test.
func WriteKubeconfig(t *testing.T, dir string, config *kubeconfig.Config) string {
	t.Helper()
	data, err := yaml.Marshal(config)
	if err != nil {
		t.Fatalf("failed to marshal kubeconfig: %v", err)
	}
	path := WriteFile(t, dir, "config", data)
	t.Setenv("KUBECONFIG", path)
	return path
}

// WriteFile writes data to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func encode(data []byte) string {
	if data == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

package kubeconfig

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileWrittenByClientcmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	config := api.Config{
		CurrentContext: "dev",
		Contexts:       map[string]*api.Context{"dev": {Cluster: "dev-cluster", AuthInfo: "dev-user", Namespace: "apps"}},
		Clusters: map[string]*api.Cluster{"dev-cluster": {
			Server:                   "https://10.0.0.1:6443",
			CertificateAuthorityData: []byte("ca-pem"),
		}},
		AuthInfos: map[string]*api.AuthInfo{"dev-user": {
			ClientCertificateData: []byte("cert-pem"),
			ClientKey:             "/etc/kube/key.pem",
		}},
	}
	require.NoError(t, clientcmd.WriteToFile(config, path))

	got, err := LoadFile(path)
	require.NoError(t, err)

	ctx := got.GetCurrentContext()
	require.NotNil(t, ctx)
	assert.Equal(t, "dev", ctx.Name)
	assert.Equal(t, "apps", ctx.Namespace)

	cluster := ctx.GetCluster(got)
	require.NotNil(t, cluster)
	assert.Equal(t, "https://10.0.0.1:6443", cluster.Server)
	// Inline data stays in its on-disk base64 form.
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ca-pem")), cluster.CertificateAuthorityData)

	user := ctx.GetUser(got)
	require.NotNil(t, user)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("cert-pem")), user.ClientCertificateData)
	assert.Equal(t, "/etc/kube/key.pem", user.ClientKey)
}

func TestLoadFileResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", `
apiVersion: v1
kind: Config
current-context: ctx
clusters:
- name: c
  cluster:
    server: https://example.com
    certificate-authority: certs/ca.pem
contexts:
- name: ctx
  context:
    cluster: c
    user: u
users:
- name: u
  user:
    client-certificate: /abs/cert.pem
    client-key: key.pem
`)

	got, err := LoadFile(path)
	require.NoError(t, err)

	ctx := got.GetCurrentContext()
	assert.Equal(t, filepath.Join(dir, "certs", "ca.pem"), ctx.GetCluster(got).CertificateAuthority)
	assert.Equal(t, "/abs/cert.pem", ctx.GetUser(got).ClientCertificate)
	assert.Equal(t, filepath.Join(dir, "key.pem"), ctx.GetUser(got).ClientKey)
}

func TestLookupMissingEntries(t *testing.T) {
	config, err := Parse([]byte(`
current-context: dangling
contexts:
- name: no-refs
  context: {}
- name: bad-refs
  context:
    cluster: missing
    user: missing
`))
	require.NoError(t, err)

	assert.Nil(t, config.GetCurrentContext())

	noRefs := config.GetContext("no-refs")
	require.NotNil(t, noRefs)
	assert.Nil(t, noRefs.GetCluster(config))
	assert.Nil(t, noRefs.GetUser(config))

	badRefs := config.GetContext("bad-refs")
	require.NotNil(t, badRefs)
	assert.Nil(t, badRefs.GetCluster(config))
	assert.Nil(t, badRefs.GetUser(config))

	var nilConfig *Config
	assert.Nil(t, nilConfig.GetCurrentContext())
}

func TestLoadFilesMergesFirstWins(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first", `
clusters:
- name: shared
  cluster:
    server: https://first
`)
	second := writeFile(t, dir, "second", `
current-context: ctx
clusters:
- name: shared
  cluster:
    server: https://second
- name: extra
  cluster:
    server: https://extra
contexts:
- name: ctx
  context:
    cluster: shared
    user: u
users:
- name: u
  user:
    token: abc
`)

	got, err := LoadFiles([]string{first, filepath.Join(dir, "missing"), second})
	require.NoError(t, err)

	assert.Equal(t, "ctx", got.CurrentContext)
	require.Len(t, got.Clusters, 2)
	ctx := got.GetCurrentContext()
	assert.Equal(t, "https://first", ctx.GetCluster(got).Server)
	assert.Equal(t, "abc", ctx.GetUser(got).Token)
}

func TestLoadFilesNothingFound(t *testing.T) {
	_, err := LoadFiles([]string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config", "clusters: [this is: not valid")
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to parse kubeconfig"))
}

func TestLoadDefaultHonoursKUBECONFIG(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", "current-context: from-a\n")
	b := writeFile(t, dir, "b", "current-context: from-b\n")
	t.Setenv("KUBECONFIG", strings.Join([]string{a, b}, string(os.PathListSeparator)))

	got, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, "from-a", got.CurrentContext)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoadDefaultUsesLoadingPrecedence(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config", "current-context: mocked\n")
	orig := loadingPrecedence
	loadingPrecedence = func() []string { return []string{path} }
	t.Cleanup(func() { loadingPrecedence = orig })

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mocked", got.CurrentContext)
}

package connection

import (
	"fmt"

	"kubewire/internal/kerrors"
	"kubewire/internal/kubeconfig"
	"kubewire/internal/outbound"
	"kubewire/pkg/logging"
)

// UserIdentity is the client side of mutual TLS against the API server.
type UserIdentity struct {
	// Key is the private key assigned to the user.
	Key []byte
	// Cert is the certificate assigned to the user.
	Cert []byte
	// CA issued Cert.
	CA []byte
}

// Server is the minimum needed to reach and trust an API server.
type Server struct {
	// URL includes the scheme and port, exactly as written in the kubeconfig.
	URL string
	CA  []byte
}

// ConnectionConfig holds everything needed to reach and authenticate
// against one Kubernetes API server. Identity and Server always come from
// the same kubeconfig context. A ConnectionConfig is never modified after it
// is created and may be shared between goroutines.
type ConnectionConfig struct {
	Identity UserIdentity
	Server   Server

	// ContextName is the kubeconfig context the config was resolved from.
	ContextName string
	// Namespace is the default namespace of that context, if any.
	Namespace string
}

// loadKubeConfig is the kube configuration store used by FromKubeConfig and
// FromKubeConfigPath. An empty path selects the ambient kubeconfig.
var loadKubeConfig = kubeconfig.Load

// FromKubeConfig resolves a ConnectionConfig from the current context of the
// ambient kubeconfig.
func FromKubeConfig() (*ConnectionConfig, error) {
	return FromKubeConfigPath("")
}

// FromKubeConfigPath is FromKubeConfig for an explicit kubeconfig file. An
// empty path uses the ambient kubeconfig.
func FromKubeConfigPath(path string) (*ConnectionConfig, error) {
	config, err := loadKubeConfig(path)
	if err != nil {
		return nil, &kerrors.ConfigError{Kind: kerrors.KindLoad, Err: err}
	}
	return FromConfig(config)
}

// FromConfig resolves a ConnectionConfig from the current context of an
// already loaded kubeconfig. Resolution goes context, cluster, user,
// identity, server and stops at the first failure.
func FromConfig(config *kubeconfig.Config) (*ConnectionConfig, error) {
	kubeCtx := config.GetCurrentContext()
	if kubeCtx == nil {
		return nil, &kerrors.ConfigError{Kind: kerrors.KindNoContext, Detail: config.CurrentContext}
	}

	cluster := kubeCtx.GetCluster(config)
	if cluster == nil {
		return nil, &kerrors.ConfigError{Kind: kerrors.KindNoCluster, Detail: kubeCtx.Cluster}
	}

	user := kubeCtx.GetUser(config)
	if user == nil {
		return nil, &kerrors.ConfigError{Kind: kerrors.KindNoUser, Detail: kubeCtx.User}
	}

	identity, err := ResolveIdentity(user, cluster)
	if err != nil {
		return nil, err
	}

	server, err := ResolveServer(cluster)
	if err != nil {
		return nil, err
	}

	logging.Debug("Connection", "resolved context %q: server %s", kubeCtx.Name, server.URL)
	return &ConnectionConfig{
		Identity:    identity,
		Server:      server,
		ContextName: kubeCtx.Name,
		Namespace:   kubeCtx.Namespace,
	}, nil
}

// RequestConfig maps c to the outbound capability's configuration: the
// server CA as the only extra root, strict hostname and certificate
// verification, and the user identity for mutual TLS. The returned value
// holds copies and shares no memory with c.
func (c *ConnectionConfig) RequestConfig() outbound.RequestConfig {
	return outbound.RequestConfig{
		AcceptInvalidHostnames:    false,
		AcceptInvalidCertificates: false,
		ExtraRootCertificates: []outbound.Certificate{{
			Encoding: outbound.EncodingPEM,
			Data:     clone(c.Server.CA),
		}},
		Identity: &outbound.Identity{
			Key:  clone(c.Identity.Key),
			Cert: clone(c.Identity.Cert),
			CA:   clone(c.Identity.CA),
		},
	}
}

// Register hands c to the outbound capability and returns the handle that
// identifies it in later requests. Every call registers again and returns a
// new handle, so callers that want reuse should register once and keep the
// handle.
func (c *ConnectionConfig) Register(r outbound.Registrar) (outbound.Handle, error) {
	handle, err := r.RegisterRequestConfig(c.RequestConfig(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to register request config for %s: %w", c.Server.URL, err)
	}
	return handle, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

package kubeconfig

// Config is a parsed kubeconfig. Only the fields needed to reach a cluster
// with client certificates are modelled.
type Config struct {
	APIVersion     string         `yaml:"apiVersion,omitempty"`
	Kind           string         `yaml:"kind,omitempty"`
	CurrentContext string         `yaml:"current-context,omitempty"`
	Clusters       []NamedCluster `yaml:"clusters,omitempty"`
	Contexts       []NamedContext `yaml:"contexts,omitempty"`
	Users          []NamedUser    `yaml:"users,omitempty"`
}

// NamedCluster pairs a cluster definition with its name.
type NamedCluster struct {
	Name    string  `yaml:"name"`
	Cluster Cluster `yaml:"cluster"`
}

// Cluster describes how to reach and trust an API server.
type Cluster struct {
	Server string `yaml:"server"`
	// CertificateAuthorityData is the base64 encoded PEM bundle of the CA.
	CertificateAuthorityData string `yaml:"certificate-authority-data,omitempty"`
	// CertificateAuthority is a path to a PEM encoded CA file.
	CertificateAuthority  string `yaml:"certificate-authority,omitempty"`
	InsecureSkipTLSVerify bool   `yaml:"insecure-skip-tls-verify,omitempty"`
	TLSServerName         string `yaml:"tls-server-name,omitempty"`
}

// NamedContext pairs a context with its name.
type NamedContext struct {
	Name    string  `yaml:"name"`
	Context Context `yaml:"context"`
}

// Context ties a cluster to a user.
type Context struct {
	Name      string `yaml:"-"`
	Cluster   string `yaml:"cluster"`
	User      string `yaml:"user"`
	Namespace string `yaml:"namespace,omitempty"`
}

// NamedUser pairs a user with its name.
type NamedUser struct {
	Name string `yaml:"name"`
	User User   `yaml:"user"`
}

// User holds client certificate credentials. Each credential may be given
// inline (base64) or as a file reference.
type User struct {
	ClientCertificateData string `yaml:"client-certificate-data,omitempty"`
	ClientCertificate     string `yaml:"client-certificate,omitempty"`
	ClientKeyData         string `yaml:"client-key-data,omitempty"`
	ClientKey             string `yaml:"client-key,omitempty"`
	Token                 string `yaml:"token,omitempty"`
}

// GetCurrentContext returns the context named by current-context, or nil if
// none is set or the name is not defined.
func (c *Config) GetCurrentContext() *Context {
	if c == nil || c.CurrentContext == "" {
		return nil
	}
	return c.GetContext(c.CurrentContext)
}

// GetContext looks up a context by name.
func (c *Config) GetContext(name string) *Context {
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			ctx := c.Contexts[i].Context
			ctx.Name = name
			return &ctx
		}
	}
	return nil
}

// GetCluster returns the cluster referenced by the context, or nil.
func (ctx *Context) GetCluster(c *Config) *Cluster {
	if ctx == nil || ctx.Cluster == "" {
		return nil
	}
	for i := range c.Clusters {
		if c.Clusters[i].Name == ctx.Cluster {
			cluster := c.Clusters[i].Cluster
			return &cluster
		}
	}
	return nil
}

// GetUser returns the user referenced by the context, or nil.
func (ctx *Context) GetUser(c *Config) *User {
	if ctx == nil || ctx.User == "" {
		return nil
	}
	for i := range c.Users {
		if c.Users[i].Name == ctx.User {
			user := c.Users[i].User
			return &user
		}
	}
	return nil
}

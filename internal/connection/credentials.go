package connection

import (
	"encoding/base64"
	"errors"
	"os"

	"kubewire/internal/kerrors"
	"kubewire/internal/kubeconfig"
	"kubewire/pkg/logging"
)

var errEmptyFile = errors.New("file is empty")

// readFile is swapped in tests to observe filesystem access.
var readFile = os.ReadFile

// decodeData is swapped in tests to observe decoding.
var decodeData = base64.StdEncoding.DecodeString

// source is one piece of credential material as it appears in a kubeconfig.
type source struct {
	field  kerrors.Field
	inline string
	path   string
}

// resolve applies the precedence shared by every credential: inline data
// wins over a file reference, and one of the two must be present.
func (s source) resolve() ([]byte, error) {
	switch {
	case s.inline != "":
		data, err := decodeData(s.inline)
		if err != nil {
			return nil, kerrors.CannotDecode(s.field, err)
		}
		logging.Debug("Connection", "using inline %s", s.field)
		return data, nil
	case s.path != "":
		data, err := readFile(s.path)
		if err != nil {
			return nil, kerrors.CannotRead(s.field, s.path, err)
		}
		if len(data) == 0 {
			return nil, kerrors.CannotRead(s.field, s.path, errEmptyFile)
		}
		logging.Debug("Connection", "read %s from %s", s.field, s.path)
		return data, nil
	default:
		return nil, kerrors.CannotDetermine(s.field)
	}
}

func caSource(field kerrors.Field, cluster *kubeconfig.Cluster) source {
	return source{
		field:  field,
		inline: cluster.CertificateAuthorityData,
		path:   cluster.CertificateAuthority,
	}
}

// ResolveIdentity reads the client identity for user. The CA is taken from
// cluster. The CA, the key and the certificate are resolved in that order and
// the first failure is returned; no partial identity is ever produced.
func ResolveIdentity(user *kubeconfig.User, cluster *kubeconfig.Cluster) (UserIdentity, error) {
	ca, err := caSource(kerrors.FieldClusterCA, cluster).resolve()
	if err != nil {
		return UserIdentity{}, err
	}

	key, err := source{
		field:  kerrors.FieldUserKey,
		inline: user.ClientKeyData,
		path:   user.ClientKey,
	}.resolve()
	if err != nil {
		return UserIdentity{}, err
	}

	cert, err := source{
		field:  kerrors.FieldUserCert,
		inline: user.ClientCertificateData,
		path:   user.ClientCertificate,
	}.resolve()
	if err != nil {
		return UserIdentity{}, err
	}

	return UserIdentity{Key: key, Cert: cert, CA: ca}, nil
}

// ResolveServer reads the endpoint of cluster. The URL is copied as written.
// The CA is resolved on its own, independently of ResolveIdentity.
func ResolveServer(cluster *kubeconfig.Cluster) (Server, error) {
	ca, err := caSource(kerrors.FieldServerCA, cluster).resolve()
	if err != nil {
		return Server{}, err
	}
	return Server{URL: cluster.Server, CA: ca}, nil
}

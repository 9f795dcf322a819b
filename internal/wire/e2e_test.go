package wire

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kubewire/internal/connection"
	"kubewire/internal/outbound"
	"kubewire/internal/testutil"
)

func TestMakeRequestEndToEnd(t *testing.T) {
	p := testutil.NewPKI(t)

	var gotCN, gotQuery, gotBody, gotContentType string
	srv := testutil.NewMTLSServer(t, p, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.TLS.PeerCertificates) > 0 {
			gotCN = r.TLS.PeerCertificates[0].Subject.CommonName
		}
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"kind":"Pod"}`))
	}))

	testutil.WriteKubeconfig(t, t.TempDir(), testutil.NewKubeconfig(srv.URL, p.InlineCredentials()))

	cc, err := connection.FromKubeConfig()
	require.NoError(t, err)

	client := outbound.NewClient()
	handle, err := cc.Register(client)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "/api/v1/namespaces/default/pods?fieldManager=kubewire", strings.NewReader(`{"kind":"Pod"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := MakeRequest(context.Background(), req, cc, handle, client)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "application/json", resp.Header("content-type"))
	assert.Equal(t, `{"kind":"Pod"}`, string(resp.Body))

	assert.Equal(t, "kubewire-user", gotCN)
	assert.Equal(t, "fieldManager=kubewire", gotQuery)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, `{"kind":"Pod"}`, gotBody)
}

func TestMakeRequestRejectsServerWithOtherCA(t *testing.T) {
	serverPKI := testutil.NewPKI(t)
	clientPKI := testutil.NewPKI(t)

	srv := testutil.NewMTLSServer(t, serverPKI, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cc := &connection.ConnectionConfig{
		Identity: connection.UserIdentity{Key: clientPKI.ClientKeyPEM, Cert: clientPKI.ClientCertPEM, CA: clientPKI.CAPEM},
		Server:   connection.Server{URL: srv.URL, CA: clientPKI.CAPEM},
	}

	client := outbound.NewClient()
	handle, err := cc.Register(client)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "/version", nil)
	require.NoError(t, err)

	_, err = MakeRequest(context.Background(), req, cc, handle, client)
	require.Error(t, err)
	assert.ErrorIs(t, err, outbound.RequestError)
}

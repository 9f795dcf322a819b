package kubeapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/version"

	"kubewire/internal/connection"
	"kubewire/internal/outbound"
	"kubewire/internal/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	p := testutil.NewPKI(t)
	srv := testutil.NewMTLSServer(t, p, handler)
	testutil.WriteKubeconfig(t, t.TempDir(), testutil.NewKubeconfig(srv.URL, p.InlineCredentials()))

	conn, err := connection.FromKubeConfig()
	require.NoError(t, err)

	client, err := NewClient(conn, outbound.NewClient())
	require.NoError(t, err)
	return client
}

func TestClientListPods(t *testing.T) {
	var gotPath, gotSelector string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSelector = r.URL.Query().Get("labelSelector")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(podListJSON))
	})
	assert.NotEmpty(t, client.Handle())

	req, err := ListPods("default", metav1.ListOptions{LabelSelector: "app=web"})
	require.NoError(t, err)

	pods := &corev1.PodList{}
	require.NoError(t, client.DoInto(context.Background(), req, pods))
	assert.Len(t, pods.Items, 2)
	assert.Equal(t, "/api/v1/namespaces/default/pods", gotPath)
	assert.Equal(t, "app=web", gotSelector)
}

func TestClientVersionAndErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/version" {
			_, _ = w.Write([]byte(`{"major":"1","minor":"33","gitVersion":"v1.33.0"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"kind":"Status","apiVersion":"v1","status":"Failure","message":"namespaces \"nope\" not found","reason":"NotFound","code":404}`))
	})

	req, err := GetVersion()
	require.NoError(t, err)
	info := &version.Info{}
	require.NoError(t, client.DoInto(context.Background(), req, info))
	assert.Equal(t, "v1.33.0", info.GitVersion)

	req, err = GetNamespace("nope")
	require.NoError(t, err)
	err = client.DoInto(context.Background(), req, &corev1.Namespace{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, metav1.StatusReasonNotFound, apiErr.Reason())

	// Do hands back the raw response regardless of status.
	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}
